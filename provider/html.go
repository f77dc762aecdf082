package provider

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripHTML returns the text content of an HTML fragment with whitespace
// collapsed. Text without markup or entities is returned unchanged.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
