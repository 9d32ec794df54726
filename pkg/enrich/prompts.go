package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/daylogco/linkdex/pkg/link"
)

const summarizePromptTemplate = `Summarize the following web page in 2-3 sentences. Be factual and concise. Respond with the summary only, no preamble.

URL: %s
Title: %s
Description: %s

Content:
%s`

const tagPromptTemplate = `You are tagging a saved link for a personal knowledge base. Choose tags ONLY from the allowed vocabulary below. Assign a confidence between 0.0 and 1.0 to each tag. Pick at most 5 tags; pick none if nothing fits.

Allowed tags:
%s

Link:
URL: %s
Title: %s
Description: %s

Content:
%s

Respond with ONLY a JSON array, no markdown fences, no commentary, in this exact shape:
[{"name": "python", "category": "language", "confidence": 0.9}]`

// Summarize produces a short prose summary of the page content.
func (c *Client) Summarize(ctx context.Context, in Input) (string, error) {
	prompt := fmt.Sprintf(summarizePromptTemplate, in.URL, in.Title, in.Description, clipForPrompt(in.Content))
	out, err := c.call(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", &BackendError{Provider: "llm", Err: fmt.Errorf("empty summary returned")}
	}
	return out, nil
}

// Tag classifies the link against the vocabulary. Tags the model invents
// outside the vocabulary are dropped; confidences are clamped to [0, 1].
func (c *Client) Tag(ctx context.Context, in Input, vocab Vocabulary) ([]link.Tag, error) {
	prompt := fmt.Sprintf(tagPromptTemplate, vocab.PromptList(), in.URL, in.Title, in.Description, clipForPrompt(in.Content))
	out, err := c.call(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseTagResponse(out, vocab)
}

type tagResponse struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func parseTagResponse(raw string, vocab Vocabulary) ([]link.Tag, error) {
	raw = stripFences(raw)

	var parsed []tagResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &BackendError{Provider: "llm", Err: fmt.Errorf("parse tag response: %w", err)}
	}

	tags := make([]link.Tag, 0, len(parsed))
	for _, t := range parsed {
		category := link.Category(strings.ToLower(strings.TrimSpace(t.Category)))
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if !vocab.Contains(category, name) {
			continue
		}
		confidence := t.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		tags = append(tags, link.Tag{Name: name, Category: category, Confidence: confidence})
	}
	return tags, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// emit despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

const maxPromptContent = 8_000

// clipForPrompt cuts at a rune boundary so a clipped prompt never carries a
// split multi-byte character.
func clipForPrompt(content string) string {
	if len(content) <= maxPromptContent {
		return content
	}
	cut := maxPromptContent
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
