// Package config loads, normalizes, and validates mediavault configuration.
//
// Configuration lives in a TOML file (default ~/.config/mediavault/config.toml)
// with secrets optionally supplied through the environment. Load returns a
// fully normalized config: paths expanded, defaults applied, and required
// values checked so downstream components never re-validate.
package config
