package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/clipfmt/cmd/clipfmt"
	"github.com/arthur-debert/clipfmt/internal/version"
)

func main() {
	rootCmd := clipfmt.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "CLIPFMT",
		Section: "1",
		Source:  "clipfmt " + version.Version,
		Manual:  "clipfmt manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
