package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/clipfmt/pkg/errors"
)

// EnvPrefix marks environment variables that override settings.
// Nested keys are separated by a double underscore.
const EnvPrefix = "CLIPFMT_"

// Watch backends
const (
	BackendPoll     = "poll"
	BackendFSNotify = "fsnotify"
)

// Settings is the process-wide configuration.
type Settings struct {
	ClipboardPollInterval  time.Duration `koanf:"clipboard_poll_interval"`
	ConfigReloadInterval   time.Duration `koanf:"config_reload_interval"`
	ClipboardRetryInterval time.Duration `koanf:"clipboard_retry_interval"`
	WatchBackend           string        `koanf:"watch_backend"`
	ShowDiff               bool          `koanf:"show_diff"`
}

type document struct {
	App Settings `koanf:"app"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		ClipboardPollInterval:  500 * time.Millisecond,
		ConfigReloadInterval:   1000 * time.Millisecond,
		ClipboardRetryInterval: 3000 * time.Millisecond,
		WatchBackend:           BackendPoll,
		ShowDiff:               true,
	}
}

func defaultsMap() map[string]interface{} {
	d := Defaults()
	return map[string]interface{}{
		"app.clipboard_poll_interval":  d.ClipboardPollInterval.Milliseconds(),
		"app.config_reload_interval":   d.ConfigReloadInterval.Milliseconds(),
		"app.clipboard_retry_interval": d.ClipboardRetryInterval.Milliseconds(),
		"app.watch_backend":            d.WatchBackend,
		"app.show_diff":                d.ShowDiff,
	}
}

// ParseSettings layers defaults, the TOML document in data and the environment.
func ParseSettings(data []byte) (Settings, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User document
	if err := k.Load(&rawBytesProvider{bytes: data}, toml.Parser()); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigParse, "failed to parse settings")
	}

	// 3. Environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	var doc document
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &doc,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				millisecondsHookFunc(),
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &doc, unmarshalConf); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}

	if err := doc.App.Validate(); err != nil {
		return Settings{}, err
	}
	return doc.App, nil
}

// Validate rejects settings the monitor cannot run with.
func (s Settings) Validate() error {
	intervals := []struct {
		name  string
		value time.Duration
	}{
		{"clipboard_poll_interval", s.ClipboardPollInterval},
		{"config_reload_interval", s.ConfigReloadInterval},
		{"clipboard_retry_interval", s.ClipboardRetryInterval},
	}
	for _, iv := range intervals {
		if iv.value <= 0 {
			return errors.Newf(errors.ErrConfigValid, "%s must be positive, got %s", iv.name, iv.value).
				WithDetail("key", iv.name)
		}
	}

	switch s.WatchBackend {
	case BackendPoll, BackendFSNotify:
	default:
		return errors.Newf(errors.ErrConfigValid, "watch_backend must be %q or %q, got %q",
			BackendPoll, BackendFSNotify, s.WatchBackend).
			WithDetail("key", "watch_backend")
	}
	return nil
}

// envKey maps CLIPFMT_APP__SHOW_DIFF to app.show_diff.
// Variables without a section separator (CLIPFMT_CONFIG_DIR) are not settings.
func envKey(s string) string {
	key := strings.TrimPrefix(s, EnvPrefix)
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(key, "__", "."))
}

// millisecondsHookFunc decodes bare numbers, and numeric strings, as milliseconds.
// Other strings fall through to the time.ParseDuration hook ("2s").
func millisecondsHookFunc() mapstructure.DecodeHookFunc {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case int64:
			return time.Duration(v) * time.Millisecond, nil
		case int:
			return time.Duration(v) * time.Millisecond, nil
		case float64:
			return time.Duration(v * float64(time.Millisecond)), nil
		case string:
			ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return data, nil
			}
			return time.Duration(ms) * time.Millisecond, nil
		}
		return data, nil
	}
}

// String summarises the settings for logs.
func (s Settings) String() string {
	return fmt.Sprintf("poll=%s reload=%s retry=%s backend=%s diff=%t",
		s.ClipboardPollInterval, s.ConfigReloadInterval, s.ClipboardRetryInterval, s.WatchBackend, s.ShowDiff)
}
