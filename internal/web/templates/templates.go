// Package templates holds the HTML fragments returned to HTMX requests.
package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/colsplit/internal/table"
)

// ErrorAlert renders a dismissible error box with the message, the suggested
// action and the error code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		b.WriteString(`<p class="alert-message">`)
		b.WriteString(templ.EscapeString(message))
		b.WriteString(`</p>`)
		if action != "" {
			b.WriteString(`<p class="alert-action">`)
			b.WriteString(templ.EscapeString(action))
			b.WriteString(`</p>`)
		}
		b.WriteString(`<span class="alert-code">`)
		b.WriteString(templ.EscapeString(code))
		b.WriteString(`</span></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// TablePreview renders t as an HTML table. Null cells are shown empty with
// a "null" class.
func TablePreview(t table.RawTable) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<table class="preview"><thead><tr>`)
		for _, h := range t.Header {
			b.WriteString(`<th>`)
			b.WriteString(templ.EscapeString(h))
			b.WriteString(`</th>`)
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range t.Rows {
			b.WriteString(`<tr>`)
			for i := range t.Header {
				var cell *string
				if i < len(row) {
					cell = row[i]
				}
				if cell == nil {
					b.WriteString(`<td class="null"></td>`)
					continue
				}
				b.WriteString(`<td>`)
				b.WriteString(templ.EscapeString(*cell))
				b.WriteString(`</td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
