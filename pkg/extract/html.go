package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/daylogco/linkdex/pkg/fetch"
)

// boilerplateSelector matches the elements stripped before text extraction.
const boilerplateSelector = "script, style, nav, header, footer, aside, form, noscript, iframe"

// HTML strips boilerplate and returns the main readable text. Candidate
// containers are tried most-specific first; the first non-empty one wins.
func HTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", &Error{ContentType: fetch.TypeHTML, Err: err}
	}

	doc.Find(boilerplateSelector).Remove()

	candidates := []*goquery.Selection{
		doc.Find("article").First(),
		doc.Find("main").First(),
		doc.Find("div[class*=content], div[class*=article], div[class*=post]").First(),
		doc.Find("body").First(),
	}

	for _, candidate := range candidates {
		if candidate.Length() == 0 {
			continue
		}
		if text := normalize(candidate.Text()); text != "" {
			return truncate(text), nil
		}
	}

	return "", nil
}

// Title returns the document's <title> text, or "".
func Title(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return normalize(doc.Find("title").First().Text())
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
