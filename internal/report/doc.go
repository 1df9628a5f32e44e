// Package report renders a built link report.
//
// This package contains writers for different output formats:
//   - HTMLWriter: Interactive page with section headers and per-URL status lines
//   - TextWriter: Terminal table with the same structure as the HTML page
//   - DelimitedWriter: Tab or comma separated export, one row per URL
//   - XLSXWriter, ODSWriter: Paginated spreadsheet exports
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Summary tables and per-section tables for sharing
//
// Writers never mutate the report. They implement the Writer interface,
// allowing them to be used interchangeably and composed for multi-format
// output. NewWriter selects a writer from a Format.
package report
