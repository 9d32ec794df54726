// Package extract turns fetched bytes into plain readable text. Extraction is
// a pure transform: identical input bytes always produce identical text, and
// empty text is a valid result distinct from failure.
package extract

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/daylogco/linkdex/pkg/fetch"
)

// MaxTextLen caps extracted text so one enormous page cannot bloat the store
// or the enrichment prompts.
const MaxTextLen = 10_000

// ErrUnsupportedType marks content the extractor has no text strategy for.
// This is a terminal failure; the coordinator never retries it.
var ErrUnsupportedType = errors.New("unsupported content type")

// Error wraps a content-specific extraction failure (malformed PDF, etc.).
type Error struct {
	ContentType fetch.ContentType
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extracting %s content: %v", e.ContentType, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Extract dispatches on the classified content type. HTML gets a readability
// pass; PDFs get page-ordered text; anything else fails with
// ErrUnsupportedType.
func Extract(contentType fetch.ContentType, data []byte) (string, error) {
	switch contentType {
	case fetch.TypeHTML:
		return HTML(data)
	case fetch.TypePDF:
		return PDF(data)
	default:
		return "", ErrUnsupportedType
	}
}

// truncate caps text at MaxTextLen bytes, backing up to a rune boundary so
// the cut never leaves invalid UTF-8.
func truncate(text string) string {
	if len(text) <= MaxTextLen {
		return text
	}
	cut := MaxTextLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
