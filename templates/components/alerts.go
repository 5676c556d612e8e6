// Package components holds small reusable HTML fragments.
package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Warning renders a non-fatal notice, e.g. a missing selection
func Warning(message string) templ.Component {
	return alert("warning", message)
}

// ErrorState renders a failed request
func ErrorState(message string) templ.Component {
	return alert("error", message)
}

func alert(kind, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="alert alert-`+kind+`" role="alert">`+
			templ.EscapeString(message)+`</div>`)
		return err
	})
}
