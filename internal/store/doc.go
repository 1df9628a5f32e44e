// Package store keeps course content in a SQL database.
//
// The store holds a snapshot of course structure (courses, sections and
// content items) and of the text fields of each activity instance. It never
// stores probe results: every report re-probes every link.
//
// Two dialects are supported through sqlx: SQLite (modernc.org/sqlite, the
// default, no cgo) and PostgreSQL (lib/pq). Queries are written with "?"
// placeholders and rebound for the active driver.
//
// Items reference their activity instance by module type and instance id.
// Text fields are loaded lazily when an item is validated; an item whose
// instance is missing yields a *model.LookupError.
package store
