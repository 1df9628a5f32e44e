// Package validator checks every link of one content item.
//
// A Validator reads the item's text fields, flattens HTML fields, extracts
// URLs and probes the probeable ones concurrently. Results are written into
// slots allocated in extraction order, so the resulting ItemReport does not
// depend on which probe finishes first.
package validator
