package rules

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/clipfmt/pkg/config"
	"github.com/arthur-debert/clipfmt/pkg/errors"
	"github.com/arthur-debert/clipfmt/pkg/fingerprint"
	"github.com/arthur-debert/clipfmt/pkg/formatter"
	"github.com/arthur-debert/clipfmt/pkg/logging"
)

// Kind identifies what a source file holds.
type Kind int

const (
	KindSettings Kind = iota + 1
	KindReplacements
	KindExclusions
)

func (k Kind) String() string {
	switch k {
	case KindSettings:
		return "settings"
	case KindReplacements:
		return "replacements"
	case KindExclusions:
		return "exclusions"
	default:
		return "unknown"
	}
}

// Source is one watched file.
type Source struct {
	Path string
	Kind Kind
}

// Outcome reports what a Reload did.
type Outcome int

const (
	// Ignored means the path is not a registered source.
	Ignored Outcome = iota
	// Updated means new state was parsed and installed.
	Updated
	// Unchanged means the file parsed to the state already installed.
	Unchanged
	// Failed means the file did not parse; previous state is kept and a warning was logged.
	Failed
	// Suppressed is Failed for the same broken content already reported.
	Suppressed
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case Failed:
		return "failed"
	case Suppressed:
		return "suppressed"
	default:
		return "ignored"
	}
}

type sourceState struct {
	Source
	good      fingerprint.Digest
	loaded    bool
	failedRaw fingerprint.Digest
	failing   bool
}

// parsed is a successfully decoded source waiting to be installed.
type parsed struct {
	digest  fingerprint.Digest
	install func(*Store)
}

// Store holds the current settings, rules and exclusions.
// It is owned by a single goroutine and is not safe for concurrent use.
type Store struct {
	fs     afero.Fs
	logger zerolog.Logger

	settings     config.Settings
	replacements formatter.Rules
	exclusions   formatter.Exclusions

	sources map[string]*sourceState
	order   []string
}

// NewStore registers sources. Nothing is read until Load or LoadAll.
// Until a settings source loads, Settings returns config.Defaults().
func NewStore(fs afero.Fs, sources ...Source) *Store {
	s := &Store{
		fs:           fs,
		logger:       logging.GetLogger("rules"),
		settings:     config.Defaults(),
		replacements: formatter.Rules{},
		exclusions:   formatter.NewExclusions(),
		sources:      make(map[string]*sourceState, len(sources)),
	}
	for _, src := range sources {
		src.Path = filepath.Clean(src.Path)
		if _, dup := s.sources[src.Path]; !dup {
			s.order = append(s.order, src.Path)
		}
		s.sources[src.Path] = &sourceState{Source: src}
	}
	return s
}

// LoadAll loads every source in registration order and stops at the first error.
func (s *Store) LoadAll() error {
	for _, path := range s.order {
		if err := s.Load(path); err != nil {
			return err
		}
	}
	return nil
}

// Load parses a source and installs it. Errors are returned, not logged; the
// caller decides whether they are fatal.
func (s *Store) Load(path string) error {
	st, ok := s.sources[filepath.Clean(path)]
	if !ok {
		return errors.Newf(errors.ErrNotFound, "%s is not a registered rule source", path)
	}

	p, _, err := s.parse(st.Source)
	if err != nil {
		return err
	}
	p.install(s)
	st.good = p.digest
	st.loaded = true
	st.failing = false

	s.logger.Debug().
		Str("path", st.Path).
		Str("kind", st.Kind.String()).
		Str("digest", p.digest.String()).
		Msg("Loaded rule source")
	return nil
}

// Reload re-parses a source after a change event. On failure the previous
// state stays in place and the parse error is returned.
func (s *Store) Reload(path string) (Outcome, error) {
	st, ok := s.sources[filepath.Clean(path)]
	if !ok {
		s.logger.Trace().Str("path", path).Msg("Ignoring change to unregistered file")
		return Ignored, nil
	}

	done := logging.LogOperationStart(s.logger, "reload "+st.Kind.String())
	defer done()

	p, raw, err := s.parse(st.Source)
	if err != nil {
		if st.failing && raw == st.failedRaw {
			s.logger.Debug().Str("path", st.Path).Msg("Rule file still invalid")
			return Suppressed, err
		}
		st.failing = true
		st.failedRaw = raw
		s.logger.Warn().
			Err(err).
			Str("code", string(errors.GetErrorCode(err))).
			Str("path", st.Path).
			Str("kind", st.Kind.String()).
			Msg("Failed to reload, keeping previous rules")
		return Failed, err
	}

	recovered := st.failing
	st.failing = false

	if st.loaded && p.digest == st.good {
		if recovered {
			s.logger.Info().Str("path", st.Path).Msg("Rule file is valid again, rules unchanged")
		} else {
			s.logger.Debug().Str("path", st.Path).Msg("Rule file touched, rules unchanged")
		}
		return Unchanged, nil
	}

	p.install(s)
	st.good = p.digest
	st.loaded = true

	s.logger.Info().
		Str("path", st.Path).
		Str("kind", st.Kind.String()).
		Msg("Reloaded " + filepath.Base(st.Path))
	return Updated, nil
}

func (s *Store) parse(src Source) (parsed, fingerprint.Digest, error) {
	data, err := afero.ReadFile(s.fs, src.Path)
	if err != nil {
		return parsed{}, fingerprint.Of("unreadable", err.Error()),
			errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", src.Path).WithDetail("path", src.Path)
	}
	raw := fingerprint.Bytes(data)

	switch src.Kind {
	case KindSettings:
		settings, err := config.ParseSettings(data)
		if err != nil {
			return parsed{}, raw, wrapParse(err, src.Path)
		}
		return parsed{
			digest:  fingerprint.Of(settings.String()),
			install: func(s *Store) { s.settings = settings },
		}, raw, nil

	case KindReplacements:
		rules, err := ParseReplacements(src.Path, data)
		if err != nil {
			return parsed{}, raw, err
		}
		return parsed{
			digest:  fingerprint.Rules(rules, formatter.Exclusions{}),
			install: func(s *Store) { s.replacements = rules },
		}, raw, nil

	case KindExclusions:
		exclusions, err := ParseExclusions(src.Path, data)
		if err != nil {
			return parsed{}, raw, err
		}
		for _, r := range exclusions.Runes() {
			if !formatter.IsFoldable(r) {
				s.logger.Debug().Str("char", string(r)).Msg("Exclusion outside the full-width range has no effect")
			}
		}
		return parsed{
			digest:  fingerprint.Rules(nil, exclusions),
			install: func(s *Store) { s.exclusions = exclusions },
		}, raw, nil
	}

	return parsed{}, raw, errors.Newf(errors.ErrInternal, "unknown source kind %d", src.Kind)
}

// Settings returns the current settings.
func (s *Store) Settings() config.Settings { return s.settings }

// Replacements returns the current ordered rules. Callers must not modify them.
func (s *Store) Replacements() formatter.Rules { return s.replacements }

// Exclusions returns the current exclusion set.
func (s *Store) Exclusions() formatter.Exclusions { return s.exclusions }

// Paths returns the registered source paths in registration order.
func (s *Store) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Failing reports whether the last reload of path failed.
func (s *Store) Failing(path string) bool {
	st, ok := s.sources[filepath.Clean(path)]
	return ok && st.failing
}
