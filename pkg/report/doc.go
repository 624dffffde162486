// Package report renders distribution group membership reports.
//
// A report is built from a Snapshot of one group and its ordered members and
// rendered by a Renderer. Two renderers are provided:
//
//	HTMLRenderer  text/html, built with gomponents
//	PDFRenderer   application/pdf, built with fpdf
//
// Generator loads the snapshot, renders it and records a generate_report
// audit entry.
package report
