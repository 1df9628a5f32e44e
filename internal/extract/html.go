package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// FlattenHTML converts markup to plain text for URL extraction.
// Text nodes are entity-decoded and the value of every tag attribute is
// kept, so both link targets and visible link text are scanned. Tokens are
// separated by a single space. Script and style bodies are kept as text
// because links inside them are still links.
func FlattenHTML(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	parts := make([]string, 0)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way we are done.
			return strings.Join(parts, " ")
		case html.TextToken:
			if text := strings.TrimSpace(string(z.Text())); text != "" {
				parts = append(parts, text)
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			for _, attr := range tok.Attr {
				if v := strings.TrimSpace(attr.Val); v != "" {
					parts = append(parts, v)
				}
			}
		case html.EndTagToken, html.CommentToken, html.DoctypeToken:
			// nothing to scan
		}
	}
}
