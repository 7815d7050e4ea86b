package config

import (
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/kegpack/pkg/errors"
)

// Dump writes the configuration as TOML
func (c *Config) Dump(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return nil
}
