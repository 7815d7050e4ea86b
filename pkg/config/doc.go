// Package config loads kegpack's configuration.
//
// Values are layered, later layers winning:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. a user file, given explicitly or found at
//     $XDG_CONFIG_HOME/kegpack/config.toml (or config.yaml)
//  3. KEGPACK_* environment variables, KEGPACK_VERSION_FILE setting
//     version.file
//  4. command line overrides
//
// Rule lists from a user file are appended to the defaults. Setting
// inherit_rules = false in the user file replaces them instead.
package config
