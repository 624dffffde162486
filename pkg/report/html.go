package report

import (
	"fmt"
	"io"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const reportCSS = `body{font-family:Helvetica,Arial,sans-serif;margin:2em;color:#222}
h1{font-size:1.6em}
dl{display:grid;grid-template-columns:max-content auto;gap:.3em 1em}
dt{font-weight:bold}
table{border-collapse:collapse;width:100%;margin-top:1.5em}
th{background:#808080;color:#f5f5f5;text-align:left}
th,td{border:1px solid #000;padding:.3em .5em;font-size:.9em}
td{background:#f5f5dc}`

// HTMLRenderer renders a standalone HTML page
type HTMLRenderer struct{}

// ContentType implements Renderer
func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Extension implements Renderer
func (HTMLRenderer) Extension() string { return "html" }

// Render implements Renderer
func (HTMLRenderer) Render(w io.Writer, snap *Snapshot) error {
	return reportPage(snap).Render(w)
}

func reportPage(snap *Snapshot) Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				TitleEl(Text(snap.Title())),
				StyleEl(Raw(reportCSS)),
			),
			Body(
				H1(Text(snap.Title())),
				groupSummary(snap),
				memberTable(snap),
			),
		),
	)
}

func groupSummary(snap *Snapshot) Node {
	item := func(label, value string) Node {
		return Group{Dt(Text(label)), Dd(Text(value))}
	}
	return Dl(
		item("Group Name", snap.Group.Name),
		item("Email", snap.Group.Email),
		item("Description", snap.Description()),
		item("Total Members", fmt.Sprintf("%d", len(snap.Members))),
		item("Generated", snap.GeneratedAt.Format(DateTimeLayout)),
		If(snap.GeneratedBy != "", item("Generated By", snap.GeneratedBy)),
	)
}

func memberTable(snap *Snapshot) Node {
	if len(snap.Members) == 0 {
		return P(Class("empty"), Text(EmptyMessage))
	}
	return Table(
		THead(Tr(Map(Columns, func(c string) Node { return Th(Text(c)) }))),
		TBody(Map(snap.Rows(), func(row []string) Node {
			return Tr(Map(row, func(cell string) Node { return Td(Text(cell)) }))
		})),
	)
}
