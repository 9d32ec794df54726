package feed_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/daylogco/linkdex/pkg/feed"
	"github.com/daylogco/linkdex/pkg/link"
)

var _ = Describe("RenderRSS", func() {
	opts := feed.Options{
		Title:       "Saved Links",
		Description: "Links from daily notes",
		SiteURL:     "https://links.example",
	}

	It("renders channel metadata and items", func() {
		summary := "A summary of the page."
		records := []*link.Record{
			{
				URL:       "https://go.dev/blog/slices",
				PageTitle: "Arrays, slices and strings",
				Summary:   &summary,
				FirstSeen: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				Tags:      []link.Tag{{Name: "go", Category: link.CategoryLanguage, Confidence: 0.9}},
			},
		}

		out, err := feed.RenderRSS(records, opts)
		Expect(err).NotTo(HaveOccurred())

		doc := string(out)
		Expect(doc).To(ContainSubstring(`<rss version="2.0">`))
		Expect(doc).To(ContainSubstring("<title>Saved Links</title>"))
		Expect(doc).To(ContainSubstring("<title>Arrays, slices and strings</title>"))
		Expect(doc).To(ContainSubstring("<description>A summary of the page.</description>"))
		Expect(doc).To(ContainSubstring(`<guid isPermaLink="true">https://go.dev/blog/slices</guid>`))
		Expect(doc).To(ContainSubstring("<category>go</category>"))
		Expect(doc).To(ContainSubstring("Sun, 10 Mar 2024 12:00:00 +0000"))
	})

	It("falls back through title and description to the URL", func() {
		records := []*link.Record{
			{URL: "https://a.example", Title: "Note title"},
			{URL: "https://b.example", Description: "only commentary"},
			{URL: "https://c.example"},
		}

		out, err := feed.RenderRSS(records, opts)
		Expect(err).NotTo(HaveOccurred())

		doc := string(out)
		Expect(doc).To(ContainSubstring("<title>Note title</title>"))
		Expect(doc).To(ContainSubstring("<title>only commentary</title>"))
		Expect(doc).To(ContainSubstring("<title>https://c.example</title>"))
	})

	It("prefers the summary over note commentary for descriptions", func() {
		summary := "generated"
		records := []*link.Record{
			{URL: "https://a.example", Summary: &summary, Description: "commentary"},
		}

		out, err := feed.RenderRSS(records, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("<description>generated</description>"))
		Expect(string(out)).NotTo(ContainSubstring("<description>commentary</description>"))
	})

	It("renders an empty channel without items", func() {
		out, err := feed.RenderRSS(nil, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("<channel>"))
		Expect(string(out)).NotTo(ContainSubstring("<item>"))
	})
})
