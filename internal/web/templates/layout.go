// Package templates holds the HTML components served by the web package.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `
body { font-family: system-ui, sans-serif; background: #f5f6f8; color: #1f2933; margin: 0; }
main { max-width: 40rem; margin: 4rem auto; background: #fff; padding: 2rem; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
h1 { font-size: 1.5rem; margin-top: 0; }
label { display: block; font-weight: 600; margin: 1rem 0 .25rem; }
select, input[type=file] { width: 100%; }
button { margin-top: 1.5rem; padding: .6rem 1.2rem; background: #2563eb; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
button[disabled] { background: #93a3b8; cursor: wait; }
.hint { color: #52606d; font-size: .875rem; }
.alert { margin-top: 1.5rem; padding: 1rem; border-radius: 4px; }
.alert-error { background: #fde8e8; color: #9b1c1c; }
.alert-success { background: #def7ec; color: #03543f; }
.code { font-family: monospace; font-size: .8rem; opacity: .8; }
`

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title><style>`+styles+`</style></head><body><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
