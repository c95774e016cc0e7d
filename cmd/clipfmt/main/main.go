package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/clipfmt/cmd/clipfmt"
)

func main() {
	rootCmd := clipfmt.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errorStyle := lipgloss.NewRenderer(os.Stderr).NewStyle().Foreground(lipgloss.Color("1"))
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
