package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"EvidenceCollector/pkg/formatting"
)

// publishedSelectors are tried in order; the first non-empty value wins.
var publishedSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[property="og:published_time"]`, "content"},
	{`meta[name="date"]`, "content"},
	{`meta[name="pubdate"]`, "content"},
	{`meta[itemprop="datePublished"]`, "content"},
	{`time[datetime]`, "datetime"},
}

// Page is the readable part of a fetched document.
type Page struct {
	Text      string
	Published string
}

// ExtractPage pulls paragraph text and the published date out of an HTML page.
func ExtractPage(doc *goquery.Document) Page {
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var parts []string
	root.Find("p, h1, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		if text := strings.Join(strings.Fields(root.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	}

	return Page{
		Text:      formatting.Truncate(strings.Join(parts, "\n"), rawContentRunes),
		Published: publishedDate(doc),
	}
}

func publishedDate(doc *goquery.Document) string {
	for _, ps := range publishedSelectors {
		if v, ok := doc.Find(ps.selector).First().Attr(ps.attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
