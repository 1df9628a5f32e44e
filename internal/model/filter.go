package model

import (
	"fmt"
	"strings"
)

// Filter selects which probe results a report keeps.
type Filter int

const (
	// FilterAll keeps every result.
	FilterAll Filter = iota

	// FilterErrorsOnly drops every "200 - OK" result.
	FilterErrorsOnly
)

// String returns the selector value of the filter.
func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "all"
	case FilterErrorsOnly:
		return "errorsonly"
	default:
		return "unknown"
	}
}

// Keep reports whether the filter retains the result.
func (f Filter) Keep(r ProbeResult) bool {
	if f == FilterErrorsOnly {
		return !r.IsOK()
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (f Filter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Filter) UnmarshalText(text []byte) error {
	parsed, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFilter parses a filter selector. An empty string selects FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "errorsonly", "errors-only", "errors":
		return FilterErrorsOnly, nil
	default:
		return FilterAll, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}
