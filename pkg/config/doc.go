// Package config handles clipfmt settings.
//
// Settings are layered with koanf: built-in defaults, then the user's
// config.toml, then CLIPFMT_* environment variables. The default documents
// written on first run are embedded in the binary.
package config
