package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// urlPattern matches URL-like tokens. The grammar is:
//
//	url      = start run+ end
//	start    = "http://" | "https://" | "www" digit{0,3} "." | domain "." tld "/"
//	domain   = [a-z0-9.-]+
//	tld      = [a-z]{2,4}
//	run      = [^\s()<>]+ | "(" group* ")"
//	group    = [^\s()<>]+ | "(" [^\s()<>]+ ")"
//	end      = "(" group* ")" | any char except whitespace, brackets,
//	           quotes and sentence punctuation
//
// Parentheses may nest one level inside the path. A match never ends in
// a period, comma, closing bracket or quotation mark. Matching is case
// sensitive: an upper-case scheme or domain ("HTTP://EXAMPLE.COM") is not
// a link, while IsProbeable accepts any scheme case.
var urlPattern = regexp.MustCompile(
	`\b((?:https?://|www\d{0,3}[.]|[a-z0-9.\-]+[.][a-z]{2,4}/)` +
		`(?:[^\s()<>]+|\(([^\s()<>]+|(\([^\s()<>]+\)))*\))+` +
		`(?:\(([^\s()<>]+|(\([^\s()<>]+\)))*\)|[^\s` + "`" + `!()\[\]{};:'".,<>?«»“”‘’]))`,
)

// URLs returns the URL-like substrings of all fields. Fields are scanned
// independently and their matches concatenated in field order; duplicates
// collapse to their first position. No match yields an empty slice.
func URLs(fields ...string) []string {
	found := make([]string, 0)
	seen := make(map[string]struct{})

	for _, field := range fields {
		for _, match := range urlPattern.FindAllString(field, -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			found = append(found, match)
		}
	}

	return found
}

// IsProbeable reports whether s carries an http or https scheme and a host.
// Matches starting with "www." or a bare domain are not probeable.
func IsProbeable(s string) bool {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Host != ""
}
