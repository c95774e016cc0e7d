package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/config.toml
var defaultConfig []byte

//go:embed embedded/replacements.toml
var defaultReplacements []byte

//go:embed embedded/exclusions.toml
var defaultExclusions []byte

// DefaultConfigContent returns the settings template written on first run
func DefaultConfigContent() string {
	return string(defaultConfig)
}

// DefaultReplacementsContent returns the replacement rules template
func DefaultReplacementsContent() string {
	return string(defaultReplacements)
}

// DefaultExclusionsContent returns the exclusion list template
func DefaultExclusionsContent() string {
	return string(defaultExclusions)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
