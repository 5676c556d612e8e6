// Package partials renders the HTML fragments swapped in by htmx.
package partials

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// SymbolOptions renders the selection list for a symbol search
func SymbolOptions(symbols []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(`<option value="">Select a stock</option>`)
		for _, s := range symbols {
			esc := templ.EscapeString(s)
			sb.WriteString(`<option value="` + esc + `">` + esc + `</option>`)
		}
		if len(symbols) == 0 {
			sb.WriteString(`<option value="" disabled>No matching stocks</option>`)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	})
}
