package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"

	"github.com/arthur-debert/clipfmt/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the application config directory itself
	EnvConfigDir = "CLIPFMT_CONFIG_DIR"

	// EnvStateDir overrides the application state directory (log file)
	EnvStateDir = "CLIPFMT_STATE_DIR"
)

// File and directory names. These are not user-configurable.
const (
	// AppDirName is the directory created under the XDG roots
	AppDirName = "clipfmt"

	// ConfigFileName holds application settings
	ConfigFileName = "config.toml"

	// ReplacementsFileName holds the ordered replacement rules
	ReplacementsFileName = "replacements.toml"

	// ExclusionsFileName holds characters exempt from folding
	ExclusionsFileName = "exclusions.toml"

	// LogFileName is the name of the log file
	LogFileName = "clipfmt.log"
)

// RuleFileExtensions are tried in order when looking for an existing rule
// file. The first one is also the extension of the bootstrapped defaults.
var RuleFileExtensions = []string{".toml", ".yaml", ".yml"}

// Paths resolves every location clipfmt reads or writes.
type Paths struct {
	configDir string
	stateDir  string

	// set by Resolve
	replacementsFile string
	exclusionsFile   string
}

// New resolves directories from the environment.
// XDG variables are re-read on every call so a changed XDG_CONFIG_HOME is honoured.
func New() (*Paths, error) {
	xdg.Reload()

	p := &Paths{}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = expandHome(dir)
	} else {
		if xdg.ConfigHome == "" {
			return nil, errors.New(errors.ErrConfigDir, "cannot determine config directory")
		}
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = expandHome(dir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	abs, err := filepath.Abs(p.configDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigDir, "failed to get absolute path for %s", p.configDir)
	}
	p.configDir = abs

	return p, nil
}

// NewWithRoot returns paths rooted at an explicit config directory.
func NewWithRoot(configDir, stateDir string) *Paths {
	return &Paths{configDir: configDir, stateDir: stateDir}
}

// ConfigDir is the directory holding all clipfmt files.
func (p *Paths) ConfigDir() string { return p.configDir }

// StateDir is the directory holding the log file.
func (p *Paths) StateDir() string { return p.stateDir }

// ConfigFile is the settings document.
func (p *Paths) ConfigFile() string { return filepath.Join(p.configDir, ConfigFileName) }

// ReplacementsFile is the replacement rules document.
func (p *Paths) ReplacementsFile() string {
	if p.replacementsFile != "" {
		return p.replacementsFile
	}
	return filepath.Join(p.configDir, ReplacementsFileName)
}

// ExclusionsFile is the exclusion list document.
func (p *Paths) ExclusionsFile() string {
	if p.exclusionsFile != "" {
		return p.exclusionsFile
	}
	return filepath.Join(p.configDir, ExclusionsFileName)
}

// Resolve points each rule file at the first variant found on fs, trying
// RuleFileExtensions in order. A rule file with no variant on disk keeps
// its .toml name.
func (p *Paths) Resolve(fs afero.Fs) {
	p.replacementsFile = p.findRuleFile(fs, ReplacementsFileName)
	p.exclusionsFile = p.findRuleFile(fs, ExclusionsFileName)
}

func (p *Paths) findRuleFile(fs afero.Fs, name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, ext := range RuleFileExtensions {
		candidate := filepath.Join(p.configDir, base+ext)
		if info, err := fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return filepath.Join(p.configDir, name)
}

// LogFile is the append-only log file.
func (p *Paths) LogFile() string { return filepath.Join(p.stateDir, LogFileName) }

// WatchedFiles lists every file that is hot-reloaded.
func (p *Paths) WatchedFiles() []string {
	return []string{p.ConfigFile(), p.ReplacementsFile(), p.ExclusionsFile()}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
