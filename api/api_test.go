package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/daylogco/linkdex/pkg/link"
	"github.com/daylogco/linkdex/pkg/logger"
	"github.com/daylogco/linkdex/pkg/store/sqlite"
)

var _ = Describe("Server", func() {
	var (
		server *Server
		driver *sqlite.Driver
		ctx    context.Context
	)

	get := func(path string) (*http.Response, map[string]any) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		if json.Valid(body) {
			_ = json.Unmarshal(body, &decoded)
		}
		return resp, decoded
	}

	seedLink := func(u, title, summary string, tags ...string) {
		_, err := driver.Upsert(ctx, link.Raw{
			URL:        u,
			Title:      title,
			SourceDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			SourceFile: "2024-03-10.md",
		})
		Expect(err).NotTo(HaveOccurred())

		rec, err := driver.Get(ctx, u)
		Expect(err).NotTo(HaveOccurred())
		rec.FetchStatus = link.Fetched
		rec.Summary = &summary
		rec.SummaryStatus = link.Summarized
		rec.TagStatus = link.Tagged
		for _, t := range tags {
			rec.Tags = append(rec.Tags, link.Tag{Name: t, Category: link.CategoryTopic, Confidence: 0.8})
		}
		Expect(driver.Commit(ctx, rec)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.New(":memory:")
		Expect(err).NotTo(HaveOccurred())

		server = NewServer(Config{
			ListenAddr:      ":0",
			FeedTitle:       "Saved Links",
			FeedDescription: "Links from daily notes",
			SiteURL:         "https://links.example",
		}, driver, logger.New())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	Describe("GET /ping", func() {
		It("responds pong", func() {
			resp, _ := get("/ping")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("GET /api/search", func() {
		It("requires a query", func() {
			resp, _ := get("/api/search")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns matching links", func() {
			seedLink("https://go.dev/blog/slices", "Slice internals", "About append mechanics.", "tutorial")

			resp, body := get("/api/search?q=append")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["count"]).To(BeEquivalentTo(1))

			results := body["results"].([]any)
			first := results[0].(map[string]any)
			Expect(first["url"]).To(Equal("https://go.dev/blog/slices"))
			Expect(first["tags"]).To(ContainElement("tutorial"))
		})
	})

	Describe("GET /api/links/recent", func() {
		It("lists seeded links", func() {
			seedLink("https://a.example", "A", "summary a")

			resp, body := get("/api/links/recent")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["count"]).To(BeEquivalentTo(1))
		})
	})

	Describe("GET /api/links/:url", func() {
		It("returns one record by escaped URL", func() {
			seedLink("https://a.example/page", "A", "summary a")

			resp, body := get("/api/links/" + url.PathEscape("https://a.example/page"))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["url"]).To(Equal("https://a.example/page"))
			Expect(body["summary"]).To(Equal("summary a"))
		})

		It("returns 404 for an unknown URL", func() {
			resp, _ := get("/api/links/" + url.PathEscape("https://nowhere.example"))
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /api/tags", func() {
		It("lists tags with counts", func() {
			seedLink("https://a.example", "A", "summary a", "llm")
			seedLink("https://b.example", "B", "summary b", "llm")

			resp, body := get("/api/tags")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			tags := body["tags"].([]any)
			Expect(tags).To(HaveLen(1))
			first := tags[0].(map[string]any)
			Expect(first["name"]).To(Equal("llm"))
			Expect(first["count"]).To(BeEquivalentTo(2))
		})
	})

	Describe("GET /api/tags/:name/links", func() {
		It("filters links by tag", func() {
			seedLink("https://a.example", "A", "summary a", "llm")
			seedLink("https://b.example", "B", "summary b", "database")

			resp, body := get("/api/tags/llm/links")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["count"]).To(BeEquivalentTo(1))
		})
	})

	Describe("GET /api/stats", func() {
		It("reports pipeline progress", func() {
			seedLink("https://a.example", "A", "summary a")

			resp, body := get("/api/stats")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["total"]).To(BeEquivalentTo(1))
			Expect(body["fetched"]).To(BeEquivalentTo(1))
		})
	})

	Describe("GET /rss", func() {
		It("renders an RSS document", func() {
			seedLink("https://a.example", "A page", "summary a")

			req := httptest.NewRequest(http.MethodGet, "/rss", nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("application/rss+xml"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("<title>Saved Links</title>"))
			Expect(string(body)).To(ContainSubstring("https://a.example"))
		})
	})
})
