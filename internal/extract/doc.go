// Package extract finds URL-like substrings in free-form text.
//
// Extraction is pure and deterministic: the same input always yields the
// same ordered, deduplicated output, and malformed input simply yields no
// matches. Whether a match is worth a network probe is decided separately
// by IsProbeable.
//
// HTML fields are flattened with FlattenHTML first so that URLs hidden in
// attribute values (href, src) and entity-encoded text are found as well.
package extract
