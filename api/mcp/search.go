package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/daylogco/linkdex/pkg/link"
	"github.com/daylogco/linkdex/pkg/utils"
)

var (
	searchToolName    = "search_links"
	searchDescription = "Full-text search over saved links: titles, descriptions, extracted page content and generated summaries. Returns the best matches with their tags."

	byTagToolName    = "links_by_tag"
	byTagDescription = "List saved links carrying a specific tag, newest first."

	listTagsToolName    = "list_tags"
	listTagsDescription = "List every assigned tag with its category and the number of links carrying it."
)

// SearchInput represents the input arguments for the search_links tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the full-text search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default: 10)"`
}

// LinkResult is one saved link in a tool response.
type LinkResult struct {
	URL       string   `json:"url"`
	Title     string   `json:"title,omitempty"`
	Domain    string   `json:"domain,omitempty"`
	FirstSeen string   `json:"first_seen,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Preview   string   `json:"preview,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// SearchOutput represents the output of the search_links tool.
type SearchOutput struct {
	Query   string       `json:"query"`
	Results []LinkResult `json:"results"`
	Count   int          `json:"count"`
}

// handleSearch processes a search_links request.
func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	logger := s.config.Logger

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	logger.Debug("MCP search request", "query", input.Query, "limit", limit)

	records, err := s.config.Store.Search(ctx, input.Query, limit)
	if err != nil {
		logger.Error("search failed", "query", input.Query, "error", err)
		return toolError(fmt.Sprintf("Search failed: %v", err)), SearchOutput{}, nil
	}

	output := SearchOutput{
		Query:   input.Query,
		Results: toLinkResults(records),
		Count:   len(records),
	}

	return toolResult(output, logger), output, nil
}

// ByTagInput represents the input arguments for the links_by_tag tool.
type ByTagInput struct {
	Tag string `json:"tag" jsonschema:"the tag name to filter by"`
}

// ByTagOutput represents the output of the links_by_tag tool.
type ByTagOutput struct {
	Tag     string       `json:"tag"`
	Results []LinkResult `json:"results"`
	Count   int          `json:"count"`
}

// handleByTag processes a links_by_tag request.
func (s *Server) handleByTag(ctx context.Context, req *mcp.CallToolRequest, input ByTagInput) (*mcp.CallToolResult, ByTagOutput, error) {
	logger := s.config.Logger

	records, err := s.config.Store.ByTag(ctx, input.Tag)
	if err != nil {
		logger.Error("tag lookup failed", "tag", input.Tag, "error", err)
		return toolError(fmt.Sprintf("Tag lookup failed: %v", err)), ByTagOutput{}, nil
	}

	output := ByTagOutput{
		Tag:     input.Tag,
		Results: toLinkResults(records),
		Count:   len(records),
	}

	return toolResult(output, logger), output, nil
}

// ListTagsInput represents the (empty) input for the list_tags tool.
type ListTagsInput struct{}

// TagResult is one tag with its usage count.
type TagResult struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ListTagsOutput represents the output of the list_tags tool.
type ListTagsOutput struct {
	Tags  []TagResult `json:"tags"`
	Count int         `json:"count"`
}

// handleListTags processes a list_tags request.
func (s *Server) handleListTags(ctx context.Context, req *mcp.CallToolRequest, _ ListTagsInput) (*mcp.CallToolResult, ListTagsOutput, error) {
	logger := s.config.Logger

	counts, err := s.config.Store.Tags(ctx)
	if err != nil {
		logger.Error("tag listing failed", "error", err)
		return toolError(fmt.Sprintf("Tag listing failed: %v", err)), ListTagsOutput{}, nil
	}

	tags := make([]TagResult, 0, len(counts))
	for _, tc := range counts {
		tags = append(tags, TagResult{
			Name:     tc.Name,
			Category: string(tc.Category),
			Count:    tc.Count,
		})
	}

	output := ListTagsOutput{Tags: tags, Count: len(tags)}
	return toolResult(output, logger), output, nil
}

func toLinkResults(records []*link.Record) []LinkResult {
	results := make([]LinkResult, 0, len(records))
	for _, rec := range records {
		lr := LinkResult{
			URL:     rec.URL,
			Title:   rec.BestTitle(),
			Domain:  rec.Domain,
			Preview: utils.Truncate(rec.Text(), 200),
		}
		if !rec.FirstSeen.IsZero() {
			lr.FirstSeen = rec.FirstSeen.Format("2006-01-02")
		}
		if rec.Summary != nil {
			lr.Summary = *rec.Summary
		}
		for _, tag := range rec.Tags {
			lr.Tags = append(lr.Tags, tag.Name)
		}
		results = append(results, lr)
	}
	return results
}

// toolResult serializes the structured output as JSON for the text field.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
func toolResult(output any, logger *slog.Logger) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal tool output", "error", err)
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
