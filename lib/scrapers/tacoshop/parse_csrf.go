package tacoshop

import (
	"bytes"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// ExtractCsrfToken pulls the token the order page embeds in a hidden
// input. it looks for the element by id first and falls back to any
// input carrying the token field name. returns "" when absent, the
// upstream markup is not contractual enough to error over.
func ExtractCsrfToken(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(page))
	if err != nil {
		slog.Warn("failed to parse page html for csrf token", "err", err)
		return ""
	}

	token := doc.Find("#csrf_token").AttrOr("value", "")
	if token != "" {
		return token
	}
	return doc.Find("input[name=csrf_token]").AttrOr("value", "")
}
