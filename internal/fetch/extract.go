package fetch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractText reduces raw HTML to a document title and a whitespace-normalized
// text body with script, style, and noscript content stripped.
func ExtractText(body []byte) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	title = normalizeWhitespace(doc.Find("title").First().Text())
	text = normalizeWhitespace(doc.Text())
	return title, text, nil
}

// normalizeWhitespace collapses runs of whitespace to single spaces and trims
// the ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
