// Package paths provides centralized path handling for clipfmt.
// It follows the XDG Base Directory specification and lets environment
// variables override the config and state locations.
package paths
