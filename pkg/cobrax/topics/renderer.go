package topics

// Renderer formats topic content for the terminal. ext is the topic file
// extension, including the dot.
type Renderer interface {
	Render(content string, ext string) string
}

// PlainRenderer prints topics as written.
type PlainRenderer struct{}

func (PlainRenderer) Render(content string, ext string) string {
	return content
}
