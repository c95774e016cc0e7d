package topics

import (
	"github.com/charmbracelet/glamour"
)

// GlamourRenderer renders markdown topics with glamour. Other formats pass
// through unchanged.
type GlamourRenderer struct {
	// Style is a glamour standard style name ("dark", "light", "notty") or a
	// path to a style file. Empty selects a style from the terminal background.
	Style string
	// Width wraps output at this many columns; 0 keeps glamour's default.
	Width int
}

// NewGlamourRenderer picks the style automatically.
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{}
}

func (r *GlamourRenderer) Render(content string, ext string) string {
	if ext != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	if r.Style != "" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
