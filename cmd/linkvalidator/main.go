// Package main provides the entry point for the linkvalidator CLI.
//
// linkvalidator checks every URL found in the content of a course and
// reports the HTTP status of each one, grouped by section and item.
//
// Usage:
//
//	linkvalidator import course.yaml
//	linkvalidator report <course-id>
//	linkvalidator serve
//
// See --help for all available options.
package main

// main is the entry point for linkvalidator.
func main() {
	Execute()
}
