package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/colsplit/internal/table"
)

func TestErrorAlertEscapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert(`Column "<b>" not found`, "Pick another", "COL001").Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "&lt;b&gt;")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "Pick another")
	assert.Contains(t, out, "COL001")
}

func TestErrorAlertWithoutAction(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("oops", "", "ERR000").Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "alert-action")
}

func TestTablePreview(t *testing.T) {
	tbl := table.RawTable{
		Header: []string{"a", "b"},
		Rows: []table.Row{
			{table.Str("1"), nil},
			{table.Str("x&y")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, TablePreview(tbl).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "<th>a</th><th>b</th>")
	assert.Contains(t, out, `<td>1</td><td class="null"></td>`)
	assert.Contains(t, out, `<td>x&amp;y</td><td class="null"></td>`)
}
