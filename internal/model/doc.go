// Package model defines the core data structures used throughout linkvalidator.
//
// This package contains the following main types:
//   - Course, Section, ContentItem: The content snapshot a report is built from
//   - ProbeResult: The classified outcome of probing one URL
//   - ItemReport: The ordered URL to ProbeResult mapping of one content item
//   - Row, Report: The hierarchical report model consumed by renderers
//   - Totals: The concurrency-safe accumulator of probe counters
//
// Models live in their own package so that the extractor, prober, validator,
// builder and renderers can share them without import cycles. All report
// types serialize to JSON.
package model
