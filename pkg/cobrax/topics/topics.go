// Package topics adds free-form help topics to a cobra command tree.
//
// Topics are files in an fs.FS (usually an embedded directory). The file name
// without extension is the topic name, so "rules.md" is shown by
// "app help rules". "app help topics" lists them.
package topics

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one help document.
type Topic struct {
	Name    string
	Path    string
	Content string
}

// Options configures a TopicManager.
type Options struct {
	// Extensions accepted as topics. Defaults to .txt and .md.
	Extensions []string
	// Renderer defaults to PlainRenderer.
	Renderer Renderer
}

// TopicManager holds the topics found in a source filesystem.
type TopicManager struct {
	source     fs.FS
	topics     map[string]*Topic
	extensions []string
	renderer   Renderer
}

// New creates a manager with default options. Nothing is read until Scan.
func New(source fs.FS) *TopicManager {
	return NewWithOptions(source, Options{})
}

// NewWithOptions creates a manager with custom options.
func NewWithOptions(source fs.FS, opts Options) *TopicManager {
	tm := &TopicManager{
		source:     source,
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(tm.extensions) == 0 {
		tm.extensions = []string{".txt", ".md"}
	}
	if tm.renderer == nil {
		tm.renderer = PlainRenderer{}
	}
	return tm
}

// Scan loads every file with an accepted extension.
func (tm *TopicManager) Scan() error {
	return fs.WalkDir(tm.source, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !tm.accepts(path.Ext(p)) {
			return nil
		}

		content, err := fs.ReadFile(tm.source, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		tm.topics[name] = &Topic{Name: name, Path: p, Content: string(content)}
		return nil
	})
}

func (tm *TopicManager) accepts(ext string) bool {
	for _, e := range tm.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Get looks a topic up by name.
func (tm *TopicManager) Get(name string) (*Topic, bool) {
	t, ok := tm.topics[name]
	return t, ok
}

// Names returns topic names in alphabetical order.
func (tm *TopicManager) Names() []string {
	names := make([]string, 0, len(tm.topics))
	for name := range tm.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render returns a topic formatted by the configured renderer.
func (tm *TopicManager) Render(t *Topic) string {
	return tm.renderer.Render(t.Content, path.Ext(t.Path))
}

// Initialize scans source and replaces the help command of rootCmd with one
// that also knows about topics.
func Initialize(rootCmd *cobra.Command, source fs.FS, opts Options) (*TopicManager, error) {
	tm := NewWithOptions(source, opts)
	if err := tm.Scan(); err != nil {
		return nil, fmt.Errorf("failed to scan help topics: %w", err)
	}

	defaultHelp := rootCmd.HelpFunc()
	name := rootCmd.Name()

	helpCmd := &cobra.Command{
		Use:   "help [topic]",
		Short: "Help about " + name + " or one of its topics",
		Long: "Help shows the usage of " + name + " or a help topic.\n\n" +
			"To see all available help topics:\n  " + name + " help topics",
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return append([]string{"topics"}, tm.Names()...), cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				defaultHelp(rootCmd, args)
				return
			}
			if args[0] == "topics" {
				names := tm.Names()
				if len(names) == 0 {
					fmt.Fprintln(out, "No help topics available.")
					return
				}
				fmt.Fprintln(out, "Available help topics:")
				for _, n := range names {
					fmt.Fprintf(out, "  %s\n", n)
				}
				fmt.Fprintf(out, "\nUse '%s help <topic>' to read about a specific topic.\n", name)
				return
			}
			if t, ok := tm.Get(args[0]); ok {
				fmt.Fprint(out, tm.Render(t))
				return
			}
			defaultHelp(rootCmd, args)
		},
	}

	for _, c := range rootCmd.Commands() {
		if c.Name() == "help" {
			rootCmd.RemoveCommand(c)
		}
	}
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(helpCmd)
	return tm, nil
}
