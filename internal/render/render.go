// Package render turns document text into displayable markup. Renderers are
// pure: the same input always yields the same output and input is never
// modified.
package render

// Renderer converts document text to markup.
type Renderer interface {
	Render(text string) (string, error)
}

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "catppuccin-mocha"
