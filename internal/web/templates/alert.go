package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders an error fragment for partial (HX-Request) responses.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html := `<div class="alert alert-error" role="alert"><strong>` + templ.EscapeString(message) + `</strong>`
		if action != "" {
			html += `<div>` + templ.EscapeString(action) + `</div>`
		}
		if code != "" {
			html += `<div class="code">Code: ` + templ.EscapeString(code) + `</div>`
		}
		html += `</div>`
		_, err := io.WriteString(w, html)
		return err
	})
}
