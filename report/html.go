package report

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// HTML renders the document as an HTML fragment for on-screen display
func HTML(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(doc)), &buf); err != nil {
		return "", fmt.Errorf("failed to render report HTML: %w", err)
	}
	return buf.String(), nil
}
