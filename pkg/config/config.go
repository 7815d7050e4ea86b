package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix prefixes environment overrides
const EnvPrefix = "KEGPACK_"

// Rule list keys that are appended, not replaced, across layers
var ruleKeys = []string{"exclude", "keep_only"}

// Config is the effective configuration
type Config struct {
	Categories []string   `koanf:"categories" toml:"categories"`
	Traversal  Traversal  `koanf:"traversal" toml:"traversal"`
	Version    Version    `koanf:"version" toml:"version"`
	Payload    Payload    `koanf:"payload" toml:"payload"`
	Exclude    []Exclude  `koanf:"exclude" toml:"exclude"`
	KeepOnly   []KeepOnly `koanf:"keep_only" toml:"keep_only"`

	// Sources lists the layers that contributed, in load order
	Sources []string `koanf:"-" toml:"-"`
}

// Traversal configures source enumeration
type Traversal struct {
	DetectCycles bool `koanf:"detect_cycles" toml:"detect_cycles"`
}

// Version configures the version marker
type Version struct {
	File          string `koanf:"file" toml:"file"`
	Marker        string `koanf:"marker" toml:"marker"`
	RequirePrefix string `koanf:"require_prefix" toml:"require_prefix"`
	Required      bool   `koanf:"required" toml:"required"`
}

// Payload configures the auxiliary files overlaid after the copy
type Payload struct {
	Dir      string   `koanf:"dir" toml:"dir"`
	Subdirs  []string `koanf:"subdirs" toml:"subdirs"`
	Required bool     `koanf:"required" toml:"required"`
}

// Exclude drops patterns under Dir
type Exclude struct {
	Dir      string   `koanf:"dir" toml:"dir"`
	Note     string   `koanf:"note" toml:"note,omitempty"`
	Patterns []string `koanf:"patterns" toml:"patterns"`
}

// KeepOnly drops everything under Dir except the candidates whose base name
// matches Match
type KeepOnly struct {
	Dir        string   `koanf:"dir" toml:"dir"`
	Note       string   `koanf:"note" toml:"note,omitempty"`
	Candidates []string `koanf:"candidates" toml:"candidates"`
	Match      string   `koanf:"match" toml:"match,omitempty"`
}

// LoadOptions selects the layers above the embedded defaults
type LoadOptions struct {
	// File is an explicit user config file. It must exist.
	File string
	// SkipUserFile disables the lookup of the XDG user file
	SkipUserFile bool
	// Overrides are dotted keys applied last
	Overrides map[string]interface{}
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Default returns the embedded defaults
func Default() *Config {
	cfg, err := Load(LoadOptions{SkipUserFile: true})
	if err != nil {
		// The defaults ship with the binary; failing here is a build defect.
		panic(err)
	}
	return cfg
}

// Load builds the effective configuration
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")
	var sources []string

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}
	sources = append(sources, "defaults")

	// 2. User file
	path, err := userFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		merged, err := mergeUserFile(k, path)
		if err != nil {
			return nil, err
		}
		k = merged
		sources = append(sources, path)
		logger.Debug().Str("path", path).Msg("Loaded user configuration")
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
		sources = append(sources, "flags")
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UserFilePath returns where the user config is looked up by default
func UserFilePath() string {
	return filepath.Join(xdg.ConfigHome, "kegpack", "config.toml")
}

func userFile(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file not found: %s", opts.File).
				WithDetail("path", opts.File)
		}
		return opts.File, nil
	}
	if opts.SkipUserFile {
		return "", nil
	}

	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		if path, err := xdg.SearchConfigFile(filepath.Join("kegpack", name)); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// mergeUserFile layers the user file over base. Rule lists are appended
// unless the file sets inherit_rules = false.
func mergeUserFile(base *koanf.Koanf, path string) (*koanf.Koanf, error) {
	user := koanf.New(".")
	if err := user.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path).
			WithDetail("path", path)
	}

	merged := base.Raw()
	overlay := user.Raw()
	inherit := !user.Exists("inherit_rules") || user.Bool("inherit_rules")
	delete(overlay, "inherit_rules")

	for _, key := range ruleKeys {
		if !inherit {
			delete(merged, key)
		}
		if extra, ok := overlay[key]; ok {
			merged[key] = appendSlices(merged[key], extra)
			delete(overlay, key)
		}
	}
	mergeMaps(merged, overlay)

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(merged, ""), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to merge user configuration")
	}
	return k, nil
}

// envKey maps KEGPACK_VERSION_FILE to version.file. Only the first
// underscore separates section and key.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, conf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	return &cfg, nil
}

func mergeMaps(dest, src map[string]interface{}) {
	for key, srcVal := range src {
		if srcMap, ok := srcVal.(map[string]interface{}); ok {
			if destMap, ok := dest[key].(map[string]interface{}); ok {
				mergeMaps(destMap, srcMap)
				continue
			}
		}
		dest[key] = srcVal
	}
}

func appendSlices(dest, src interface{}) interface{} {
	var out []interface{}
	for _, v := range []interface{}{dest, src} {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			out = append(out, v)
			continue
		}
		for i := 0; i < rv.Len(); i++ {
			out = append(out, rv.Index(i).Interface())
		}
	}
	return out
}
