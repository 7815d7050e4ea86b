package config

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/rules"
)

// Rules converts the exclude and keep-only groups into selection rules, in
// configuration order
func (c *Config) Rules() []rules.Rule {
	var out []rules.Rule
	for _, group := range c.Exclude {
		out = append(out, rules.Classify(group.Dir, group.Patterns)...)
	}
	for _, group := range c.KeepOnly {
		out = append(out, rules.InvertRule(group.Dir, group.Match, group.Candidates...))
	}
	return out
}

// Validate checks paths and rules
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New(errors.ErrConfigValid, "no source categories configured")
	}
	for _, category := range c.Categories {
		if err := checkRelative("categories", category); err != nil {
			return err
		}
	}
	for _, sub := range c.Payload.Subdirs {
		if err := checkRelative("payload.subdirs", sub); err != nil {
			return err
		}
	}
	if c.Version.Marker != "" {
		if err := checkRelative("version.marker", c.Version.Marker); err != nil {
			return err
		}
	}

	for i, group := range c.Exclude {
		if len(group.Patterns) == 0 {
			return errors.Newf(errors.ErrConfigValid, "exclude group %d (%s) has no patterns", i+1, group.Dir)
		}
	}
	for _, rule := range c.Rules() {
		if err := rule.Validate(); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "invalid rule %s", rule)
		}
	}
	return nil
}

func checkRelative(key, path string) error {
	clean := filepath.Clean(path)
	if path == "" || clean == "." || filepath.IsAbs(path) || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return errors.Newf(errors.ErrConfigValid, "%s: %q must be a relative path inside the tree", key, path).
			WithDetail("key", key)
	}
	return nil
}
