package notes_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/daylogco/linkdex/pkg/notes"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

var _ = Describe("Scan", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		sub := filepath.Join(root, "2025", "03")
		Expect(os.MkdirAll(sub, 0o755)).To(Succeed())

		for _, name := range []string{"2025-03-14.md", "2025-03-15.md"} {
			Expect(os.WriteFile(filepath.Join(sub, name), []byte("# note"), 0o644)).To(Succeed())
		}
		Expect(os.WriteFile(filepath.Join(root, "2025-01-02.md"), []byte("# note"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "scratch.md"), []byte("not daily"), 0o644)).To(Succeed())
	})

	It("finds dated notes recursively, newest first", func() {
		files, err := notes.Scan(root, time.Time{}, time.Time{})
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(HaveLen(3))
		Expect(files[0].Date).To(Equal(day("2025-03-15")))
		Expect(files[2].Date).To(Equal(day("2025-01-02")))
	})

	It("applies the inclusive date range", func() {
		files, err := notes.Scan(root, day("2025-03-14"), day("2025-03-14"))
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(HaveLen(1))
		Expect(filepath.Base(files[0].Path)).To(Equal("2025-03-14.md"))
	})

	It("ignores files that are not daily notes", func() {
		files, err := notes.Scan(root, time.Time{}, time.Time{})
		Expect(err).NotTo(HaveOccurred())
		for _, f := range files {
			Expect(filepath.Base(f.Path)).NotTo(Equal("scratch.md"))
		}
	})
})

var _ = Describe("Parse", func() {
	date := day("2025-03-15")

	It("returns nil without a Links section", func() {
		Expect(notes.Parse("# Daily\n\nno links here\n", date, "a.md")).To(BeNil())
	})

	It("parses markdown links with trailing commentary", func() {
		content := "## Links\n- [Great Post](https://example.com/post) - worth a reread\n"
		links := notes.Parse(content, date, "a.md")

		Expect(links).To(HaveLen(1))
		Expect(links[0].URL).To(Equal("https://example.com/post"))
		Expect(links[0].Title).To(Equal("Great Post"))
		Expect(links[0].Description).To(Equal("worth a reread"))
		Expect(links[0].SourceDate).To(Equal(date))
	})

	It("parses bare URLs with a leading description", func() {
		content := "## Links\n- cool post - https://example.com/a\n"
		links := notes.Parse(content, date, "a.md")

		Expect(links).To(HaveLen(1))
		Expect(links[0].URL).To(Equal("https://example.com/a"))
		Expect(links[0].Title).To(BeEmpty())
		Expect(links[0].Description).To(Equal("cool post"))
	})

	It("attributes nested bullets to their parent link", func() {
		content := "## Links\n" +
			"- [Parent](https://example.com/parent)\n" +
			"    - [Child](https://example.com/child)\n" +
			"\t- [Tab Child](https://example.com/tab)\n" +
			"- [Sibling](https://example.com/sibling)\n"
		links := notes.Parse(content, date, "a.md")

		Expect(links).To(HaveLen(4))
		Expect(links[0].ParentURL).To(BeEmpty())
		Expect(links[1].ParentURL).To(Equal("https://example.com/parent"))
		Expect(links[1].IndentLevel).To(Equal(1))
		Expect(links[2].ParentURL).To(Equal("https://example.com/parent"))
		Expect(links[3].ParentURL).To(BeEmpty())
	})

	It("stops at the next section heading", func() {
		content := "## Links\n- https://example.com/in\n\n## Journal\n- https://example.com/out\n"
		links := notes.Parse(content, date, "a.md")

		Expect(links).To(HaveLen(1))
		Expect(links[0].URL).To(Equal("https://example.com/in"))
	})

	It("skips list items without URLs", func() {
		content := "## Links\n- remember to water the plants\n- https://example.com/real\n"
		links := notes.Parse(content, date, "a.md")

		Expect(links).To(HaveLen(1))
	})
})
