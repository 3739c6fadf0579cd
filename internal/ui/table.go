package ui

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table renders rows with go-pretty: box drawing on a terminal, plain
// aligned columns otherwise.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(p.w)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		t.AppendRow(r)
	}

	if p.color {
		t.SetStyle(table.StyleLight)
	} else {
		style := table.StyleLight
		style.Options = table.OptionsNoBordersAndSeparators
		style.Format.Header = text.FormatUpper
		t.SetStyle(style)
	}
	t.Render()
}
