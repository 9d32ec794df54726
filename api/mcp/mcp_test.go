package mcp_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/daylogco/linkdex/api/mcp"
	"github.com/daylogco/linkdex/pkg/link"
	"github.com/daylogco/linkdex/pkg/logger"
	"github.com/daylogco/linkdex/pkg/store/sqlite"
)

var _ = Describe("MCP Server", func() {
	var (
		ctx    context.Context
		driver *sqlite.Driver
		server *mcp.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.New(":memory:")
		Expect(err).NotTo(HaveOccurred())

		server, err = mcp.NewServer(mcp.Config{
			Store:  driver,
			Logger: logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		_ = ctx
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	Describe("NewServer", func() {
		It("returns an error when the store is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("store is required"))
		})

		It("returns an error when the logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Store: driver})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a server with valid config", func() {
			Expect(server).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("creates a noop server without dependencies", func() {
			s, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(s).NotTo(BeNil())
		})
	})

	Describe("seeded store", func() {
		BeforeEach(func() {
			_, err := driver.Upsert(ctx, link.Raw{
				URL:        "https://go.dev/blog/slices",
				Title:      "Slice internals",
				SourceDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				SourceFile: "2024-03-10.md",
			})
			Expect(err).NotTo(HaveOccurred())

			rec, err := driver.Get(ctx, "https://go.dev/blog/slices")
			Expect(err).NotTo(HaveOccurred())
			summary := "About append mechanics."
			rec.FetchStatus = link.Fetched
			rec.Summary = &summary
			rec.SummaryStatus = link.Summarized
			rec.TagStatus = link.Tagged
			rec.Tags = []link.Tag{{Name: "tutorial", Category: link.CategoryTopic, Confidence: 0.8}}
			Expect(driver.Commit(ctx, rec)).To(Succeed())
		})

		It("finds records through the store the tools query", func() {
			records, err := driver.Search(ctx, "append", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))

			records, err = driver.ByTag(ctx, "tutorial")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
		})
	})
})
