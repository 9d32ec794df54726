package api

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/daylogco/linkdex/pkg/feed"
	"github.com/daylogco/linkdex/pkg/link"
	"github.com/daylogco/linkdex/pkg/store"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LinkResponse is one record in an API response.
type LinkResponse struct {
	URL           string   `json:"url"`
	Title         string   `json:"title,omitempty"`
	Description   string   `json:"description,omitempty"`
	Domain        string   `json:"domain,omitempty"`
	FirstSeen     string   `json:"first_seen,omitempty"`
	SourceFile    string   `json:"source_file,omitempty"`
	ParentURL     string   `json:"parent_url,omitempty"`
	FetchStatus   string   `json:"fetch_status"`
	FetchError    string   `json:"fetch_error,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	SummaryStatus string   `json:"summary_status"`
	TagStatus     string   `json:"tag_status"`
	Tags          []string `json:"tags,omitempty"`
}

func toLinkResponse(rec *link.Record) LinkResponse {
	resp := LinkResponse{
		URL:           rec.URL,
		Title:         rec.BestTitle(),
		Description:   rec.Description,
		Domain:        rec.Domain,
		SourceFile:    rec.SourceFile,
		ParentURL:     rec.ParentURL,
		FetchStatus:   string(rec.FetchStatus),
		FetchError:    rec.FetchError,
		SummaryStatus: string(rec.SummaryStatus),
		TagStatus:     string(rec.TagStatus),
	}
	if !rec.FirstSeen.IsZero() {
		resp.FirstSeen = rec.FirstSeen.Format("2006-01-02")
	}
	if rec.Summary != nil {
		resp.Summary = *rec.Summary
	}
	for _, tag := range rec.Tags {
		resp.Tags = append(resp.Tags, tag.Name)
	}
	return resp
}

func toLinkResponses(records []*link.Record) []LinkResponse {
	out := make([]LinkResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toLinkResponse(rec))
	}
	return out
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSearch runs a full-text query over the index.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter required"})
	}
	limit := c.QueryInt("limit", 25)

	records, err := s.store.Search(c.Context(), query, limit)
	if err != nil {
		s.logger.Error("search failed", "query", query, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "search failed"})
	}

	return c.JSON(fiber.Map{
		"query":   query,
		"count":   len(records),
		"results": toLinkResponses(records),
	})
}

// handleRecent returns the most recently seen links.
func (s *Server) handleRecent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 25)

	records, err := s.store.Recent(c.Context(), limit)
	if err != nil {
		s.logger.Error("recent lookup failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "lookup failed"})
	}

	return c.JSON(fiber.Map{
		"count":   len(records),
		"results": toLinkResponses(records),
	})
}

// handleGetLink returns one record by its URL-encoded URL.
func (s *Server) handleGetLink(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("url"))
	if err != nil || raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "url parameter required"})
	}

	rec, err := s.store.Get(c.Context(), raw)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "link not found"})
	}
	if err != nil {
		s.logger.Error("link lookup failed", "url", raw, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "lookup failed"})
	}

	return c.JSON(toLinkResponse(rec))
}

// handleTags returns every assigned tag with its usage count.
func (s *Server) handleTags(c *fiber.Ctx) error {
	counts, err := s.store.Tags(c.Context())
	if err != nil {
		s.logger.Error("tag listing failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "lookup failed"})
	}

	tags := make([]fiber.Map, 0, len(counts))
	for _, tc := range counts {
		tags = append(tags, fiber.Map{
			"name":     tc.Name,
			"category": string(tc.Category),
			"count":    tc.Count,
		})
	}

	return c.JSON(fiber.Map{"count": len(tags), "tags": tags})
}

// handleByTag returns links carrying the named tag.
func (s *Server) handleByTag(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "name parameter required"})
	}

	records, err := s.store.ByTag(c.Context(), name)
	if err != nil {
		s.logger.Error("tag lookup failed", "tag", name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "lookup failed"})
	}

	return c.JSON(fiber.Map{
		"tag":     name,
		"count":   len(records),
		"results": toLinkResponses(records),
	})
}

// handleStats returns store-wide pipeline progress.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.store.Stats(c.Context())
	if err != nil {
		s.logger.Error("stats failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "lookup failed"})
	}

	return c.JSON(fiber.Map{
		"total":          stats.Total,
		"fetched":        stats.Fetched,
		"fetch_failed":   stats.FetchFailed,
		"extract_failed": stats.ExtractFailed,
		"pending":        stats.Pending,
		"summarized":     stats.Summarized,
		"tagged":         stats.Tagged,
	})
}

// handleRSS renders the most recent links as an RSS 2.0 feed.
func (s *Server) handleRSS(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	records, err := s.store.Recent(c.Context(), limit)
	if err != nil {
		s.logger.Error("rss lookup failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "lookup failed"})
	}

	doc, err := feed.RenderRSS(records, feed.Options{
		Title:       s.config.FeedTitle,
		Description: s.config.FeedDescription,
		SiteURL:     s.config.SiteURL,
	})
	if err != nil {
		s.logger.Error("rss render failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "render failed"})
	}

	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.Send(doc)
}
