package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/arthur-debert/clipfmt/pkg/errors"
	"github.com/arthur-debert/clipfmt/pkg/logging"
	"github.com/arthur-debert/clipfmt/pkg/paths"
)

// Template pairs a target file with the content written when it is absent.
type Template struct {
	Path    string
	Content string
}

// DefaultTemplates lists the documents bootstrapped into the config directory.
func DefaultTemplates(p *paths.Paths) []Template {
	return []Template{
		{Path: p.ConfigFile(), Content: DefaultConfigContent()},
		{Path: p.ReplacementsFile(), Content: DefaultReplacementsContent()},
		{Path: p.ExclusionsFile(), Content: DefaultExclusionsContent()},
	}
}

// EnsureDefaults writes every missing template and returns the files it created.
// Existing files are never touched. Call p.Resolve first so a rule file kept
// in YAML is not shadowed by a fresh TOML template.
func EnsureDefaults(fs afero.Fs, p *paths.Paths) ([]string, error) {
	logger := logging.GetLogger("config.generate")

	if err := fs.MkdirAll(p.ConfigDir(), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create config directory %s", p.ConfigDir())
	}

	var created []string
	for _, tpl := range DefaultTemplates(p) {
		_, err := fs.Stat(tpl.Path)
		if err == nil {
			logger.Debug().Str("path", tpl.Path).Msg("Config file exists, keeping it")
			continue
		}
		if !os.IsNotExist(err) {
			return created, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", tpl.Path)
		}

		if err := fs.MkdirAll(filepath.Dir(tpl.Path), 0755); err != nil {
			return created, errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", tpl.Path)
		}
		if err := afero.WriteFile(fs, tpl.Path, []byte(tpl.Content), 0644); err != nil {
			return created, errors.Wrapf(err, errors.ErrFileCreate, "failed to create default config %s", tpl.Path)
		}

		logger.Info().Str("path", tpl.Path).Msg("Created default config")
		created = append(created, tpl.Path)
	}

	return created, nil
}
