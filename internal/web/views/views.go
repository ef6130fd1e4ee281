// Package views renders the session UI as templ components. Components
// are written against the templ runtime directly; every dynamic value
// goes through templ.EscapeString before it reaches the page.
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/csvdeck/csvdeck/internal/core"
)

// Page renders the full session page around the current state.
func Page(sessionID string, state core.SessionState, maxFileSize int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>csvdeck</title>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
<main class="container">
<h1>csvdeck</h1>
<p class="hint">Upload a CSV file (id, name, parentId) up to `+
			templ.EscapeString(formatBytes(maxFileSize))+`.</p>
`); err != nil {
			return err
		}
		if err := uploadForm(sessionID).Render(ctx, w); err != nil {
			return err
		}
		if err := StatePanel(sessionID, state).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}

// StatePanel renders the state-dependent portion of the page: status
// text, the record table when loaded, error panels, and the clear
// action once data or an error is present.
func StatePanel(sessionID string, state core.SessionState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="state state-%s">`,
			templ.EscapeString(string(state.Kind()))); err != nil {
			return err
		}

		var err error
		switch st := state.(type) {
		case core.Idle:
			_, err = io.WriteString(w, `<p class="status">No file loaded.</p>`)
		case core.AwaitingPick:
			_, err = io.WriteString(w, `<p class="status">Waiting for a file to be chosen&hellip;</p>`)
		case core.ReadingFile:
			_, err = fmt.Fprintf(w, `<p class="status">Reading %s&hellip;</p>`,
				templ.EscapeString(st.FileName))
		case core.RejectedFile:
			err = errorPanel(sessionID, st.FileName, core.FormatUserError(st.Rejection)).Render(ctx, w)
		case core.DecodeFailed:
			err = errorPanel(sessionID, st.FileName, core.FormatUserError(st.Err)).Render(ctx, w)
		case core.Loaded:
			err = recordTable(sessionID, st).Render(ctx, w)
		}
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, `</section>`)
		return err
	})
}

func uploadForm(sessionID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<form class="upload" method="post" enctype="multipart/form-data" action="/api/session/%s/upload">
<input type="file" name="file" accept=".csv,text/csv" required>
<button type="submit">Upload</button>
</form>
`, templ.EscapeString(sessionID))
		return err
	})
}

func errorPanel(sessionID, fileName, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="error"><p class="status">%s</p><p>%s</p></div>`,
			templ.EscapeString(fileName),
			templ.EscapeString(message)); err != nil {
			return err
		}
		return clearButton(sessionID).Render(ctx, w)
	})
}

// recordTable renders the three-column table with clickable headers.
// The header of the currently sorted column carries a direction marker.
func recordTable(sessionID string, st core.Loaded) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<p class="status">%s &mdash; %d rows (%s)</p>`,
			templ.EscapeString(st.FileName),
			len(st.Records),
			templ.EscapeString(sortLabel(st.Sort))); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<table class="records"><thead><tr>`); err != nil {
			return err
		}
		headers := []struct {
			col   core.Column
			label string
		}{
			{core.ColumnID, "Id"},
			{core.ColumnName, "Name"},
			{core.ColumnParentID, "Parent Id"},
		}
		for _, h := range headers {
			if err := headerCell(sessionID, h.col, h.label, st.Sort).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tr></thead><tbody>`); err != nil {
			return err
		}

		for _, r := range st.Records {
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(strconv.FormatInt(r.ID, 10)),
				templ.EscapeString(r.Name),
				templ.EscapeString(r.ParentID.String())); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `</tbody></table>`); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, `<p><a href="/api/session/%s/export">Download CSV</a></p>`,
			templ.EscapeString(sessionID)); err != nil {
			return err
		}
		return clearButton(sessionID).Render(ctx, w)
	})
}

func headerCell(sessionID string, col core.Column, label string, sort core.SortState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		marker := ""
		if sort.Applied && sort.Column == col {
			if sort.Direction == core.Descending {
				marker = " &#9660;" // filled down triangle
			} else {
				marker = " &#9650;"
			}
		}
		_, err := fmt.Fprintf(w, `<th><form method="post" action="/api/session/%s/sort/%s"><button type="submit">%s%s</button></form></th>`,
			templ.EscapeString(sessionID),
			templ.EscapeString(col.String()),
			templ.EscapeString(label),
			marker)
		return err
	})
}

func clearButton(sessionID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<form class="clear" method="post" action="/api/session/%s/clear"><button type="submit">Clear</button></form>`,
			templ.EscapeString(sessionID))
		return err
	})
}

func sortLabel(s core.SortState) string {
	if s.AsRead() {
		return "as read"
	}
	return "sorted by " + s.Column.String() + " " + s.Direction.String()
}

func formatBytes(n int64) string {
	if n >= 1000 && n%1000 == 0 {
		return strconv.FormatInt(n/1000, 10) + " KB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
