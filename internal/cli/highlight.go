package cli

import (
	"io"
	"path/filepath"

	"github.com/alecthomas/chroma/v2/quick"
)

// Highlighting settings for --color.
const (
	colorFormatter = "terminal256"
	colorStyle     = "monokai"
)

// writeHighlighted writes source to w highlighted for lexer. Highlighting
// failures fall back to the plain source.
func writeHighlighted(w io.Writer, source, lexer string) error {
	if err := quick.Highlight(w, source, lexer, colorFormatter, colorStyle); err != nil {
		_, err = io.WriteString(w, source)
		return err
	}
	return nil
}

// lexerFor maps an artifact path to a chroma lexer name.
func lexerFor(path string) string {
	switch filepath.Ext(path) {
	case ".ts":
		return "typescript"
	case ".yaml", ".yml":
		return "yaml"
	case ".dot":
		return "dot"
	case ".md":
		return "markdown"
	case ".html":
		return "html"
	default:
		return "plaintext"
	}
}
