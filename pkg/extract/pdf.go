package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/daylogco/linkdex/pkg/fetch"
)

// maxPDFPages bounds how many pages of a large document are read.
const maxPDFPages = 50

// PDF extracts embedded text per page, concatenated in page order. An
// image-only PDF yields empty text, which is a valid result, not a failure.
func PDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{ContentType: fetch.TypePDF, Err: err}
	}

	pages := reader.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page doesn't void the rest.
			continue
		}

		if sb.Len() > 0 && text != "" {
			sb.WriteString(" ")
		}
		sb.WriteString(text)

		if sb.Len() >= MaxTextLen {
			break
		}
	}

	return truncate(normalize(sb.String())), nil
}
