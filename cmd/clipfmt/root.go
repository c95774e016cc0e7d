// Package clipfmt holds the command line interface.
package clipfmt

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/clipfmt/internal/version"
	"github.com/arthur-debert/clipfmt/pkg/clipboard"
	"github.com/arthur-debert/clipfmt/pkg/cobrax/topics"
	"github.com/arthur-debert/clipfmt/pkg/config"
	"github.com/arthur-debert/clipfmt/pkg/diffview"
	"github.com/arthur-debert/clipfmt/pkg/logging"
	"github.com/arthur-debert/clipfmt/pkg/monitor"
	"github.com/arthur-debert/clipfmt/pkg/paths"
	"github.com/arthur-debert/clipfmt/pkg/rules"
	"github.com/arthur-debert/clipfmt/pkg/watch"
)

// runtimeDeps are the parts of the environment tests replace.
type runtimeDeps struct {
	fs        afero.Fs
	clipboard clipboard.Factory
	diffOut   io.Writer
	signals   []os.Signal
}

func defaultDeps() runtimeDeps {
	return runtimeDeps{
		fs:        afero.NewOsFs(),
		clipboard: clipboard.SystemFactory,
		diffOut:   os.Stderr,
		signals:   []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// NewRootCmd creates the clipfmt command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(deps runtimeDeps) *cobra.Command {
	initTemplateFormatting()

	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "clipfmt",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), MsgBanner, version.Version)
			return run(cmd.Context(), deps, verbosity)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate(fmt.Sprintf("clipfmt %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date))
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	topicsDir, err := fs.Sub(helpTopics, "topics")
	if err == nil {
		_, err = topics.Initialize(rootCmd, topicsDir, topics.Options{Renderer: topics.NewGlamourRenderer()})
	}
	if err != nil {
		log.Debug().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

func run(ctx context.Context, deps runtimeDeps, verbosity int) error {
	p, err := paths.New()
	if err != nil {
		return fmt.Errorf(MsgErrPaths, err)
	}
	logging.SetupLogger(verbosity, p.LogFile())
	log.Debug().
		Str("configDir", p.ConfigDir()).
		Str("stateDir", p.StateDir()).
		Str("commit", version.Commit).
		Msg("Starting")

	p.Resolve(deps.fs)
	if _, err := config.EnsureDefaults(deps.fs, p); err != nil {
		return fmt.Errorf(MsgErrDefaults, err)
	}

	// WatchedFiles lists settings, replacements and exclusions in that order.
	watched := p.WatchedFiles()
	kinds := []rules.Kind{rules.KindSettings, rules.KindReplacements, rules.KindExclusions}
	sources := make([]rules.Source, len(watched))
	for i, path := range watched {
		sources[i] = rules.Source{Path: path, Kind: kinds[i]}
		log.Debug().Str("path", path).Str("kind", kinds[i].String()).Msg("Watching file")
	}
	store := rules.NewStore(deps.fs, sources...)
	if err := store.LoadAll(); err != nil {
		return fmt.Errorf(MsgErrLoadRules, err)
	}

	m, err := monitor.New(store, monitor.Options{
		Clipboard: deps.clipboard,
		Watcher: func(s config.Settings) (watch.Watcher, error) {
			return watch.New(watch.Options{
				Backend:  s.WatchBackend,
				Fs:       deps.fs,
				Interval: s.ConfigReloadInterval,
			})
		},
		Diff: diffview.NewPrinter(deps.diffOut),
	})
	if err != nil {
		return fmt.Errorf(MsgErrMonitor, err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if len(deps.signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, deps.signals...)
		defer stop()
	}

	err = m.Run(ctx)
	log.Info().Msg("Stopped")
	return err
}
