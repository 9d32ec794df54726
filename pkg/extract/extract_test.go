package extract_test

import (
	"errors"
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/daylogco/linkdex/pkg/extract"
	"github.com/daylogco/linkdex/pkg/fetch"
)

var _ = Describe("Extract", func() {
	It("fails with ErrUnsupportedType for other content", func() {
		_, err := extract.Extract(fetch.TypeOther, []byte("binary"))
		Expect(errors.Is(err, extract.ErrUnsupportedType)).To(BeTrue())
	})
})

var _ = Describe("HTML", func() {
	It("strips boilerplate and keeps readable text", func() {
		html := `<html><head><style>body{}</style></head><body>
			<nav>menu menu</nav>
			<script>var x = 1;</script>
			<article><h1>A Title</h1><p>The actual story text.</p></article>
			<footer>copyright</footer>
		</body></html>`

		text, err := extract.HTML([]byte(html))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("The actual story text."))
		Expect(text).NotTo(ContainSubstring("menu menu"))
		Expect(text).NotTo(ContainSubstring("var x"))
		Expect(text).NotTo(ContainSubstring("copyright"))
	})

	It("prefers article over body content", func() {
		html := `<html><body>sidebar noise<article>core text</article></body></html>`
		text, err := extract.HTML([]byte(html))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("core text"))
	})

	It("falls back to content divs, then body", func() {
		html := `<html><body><div class="post-content">div text</div></body></html>`
		text, err := extract.HTML([]byte(html))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("div text"))

		html = `<html><body><p>plain body</p></body></html>`
		text, err = extract.HTML([]byte(html))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("plain body"))
	})

	It("normalizes whitespace", func() {
		html := "<html><body><p>spread\n\n   out\ttext</p></body></html>"
		text, err := extract.HTML([]byte(html))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("spread out text"))
	})

	It("returns empty text for an empty page without error", func() {
		text, err := extract.HTML([]byte("<html><body></body></html>"))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())
	})

	It("is deterministic for identical input", func() {
		html := []byte(`<html><body><article>same every time</article></body></html>`)
		first, err := extract.HTML(html)
		Expect(err).NotTo(HaveOccurred())
		second, err := extract.HTML(html)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
	})

	It("caps output at MaxTextLen", func() {
		var sb strings.Builder
		sb.WriteString("<html><body><p>")
		for range 5000 {
			sb.WriteString("word ")
		}
		sb.WriteString("</p></body></html>")

		text, err := extract.HTML([]byte(sb.String()))
		Expect(err).NotTo(HaveOccurred())
		Expect(len(text)).To(BeNumerically("<=", extract.MaxTextLen))
	})

	It("never splits a multi-byte rune at the cap", func() {
		page := "<html><body><p>" + strings.Repeat("€", 4000) + "</p></body></html>"

		text, err := extract.HTML([]byte(page))
		Expect(err).NotTo(HaveOccurred())
		Expect(len(text)).To(BeNumerically("<=", extract.MaxTextLen))
		Expect(utf8.ValidString(text)).To(BeTrue())
	})
})

var _ = Describe("Title", func() {
	It("returns the document title", func() {
		html := `<html><head><title>  Page &amp; Title </title></head><body></body></html>`
		Expect(extract.Title([]byte(html))).To(Equal("Page & Title"))
	})

	It("returns empty when there is no title", func() {
		Expect(extract.Title([]byte("<html><body></body></html>"))).To(BeEmpty())
	})
})

var _ = Describe("PDF", func() {
	It("fails with a typed error for garbage bytes", func() {
		_, err := extract.PDF([]byte("not a pdf"))

		var extractErr *extract.Error
		Expect(errors.As(err, &extractErr)).To(BeTrue())
		Expect(extractErr.ContentType).To(Equal(fetch.TypePDF))
	})
})
