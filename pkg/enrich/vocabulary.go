package enrich

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/daylogco/linkdex/pkg/link"
)

// Vocabulary is the fixed tag set the backend may draw from, keyed by
// category. Tags outside the vocabulary are rejected, never stored.
type Vocabulary map[link.Category][]string

// Contains reports whether name is a known tag in the given category.
func (v Vocabulary) Contains(category link.Category, name string) bool {
	for _, tag := range v[category] {
		if tag == name {
			return true
		}
	}
	return false
}

// PromptList renders the vocabulary for inclusion in an LLM prompt.
func (v Vocabulary) PromptList() string {
	var sb strings.Builder
	for _, category := range []link.Category{link.CategoryLanguage, link.CategoryTopic, link.CategoryCulture} {
		tags := v[category]
		if len(tags) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n", category)
		for _, tag := range tags {
			fmt.Fprintf(&sb, "  - %s\n", tag)
		}
	}
	return sb.String()
}

// LoadVocabulary reads a YAML vocabulary file with category keys
// (language/topic/culture) mapping to tag name lists. An empty path returns
// the built-in vocabulary.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}

	vocab := make(Vocabulary, len(raw))
	for key, tags := range raw {
		category := link.Category(key)
		switch category {
		case link.CategoryLanguage, link.CategoryTopic, link.CategoryCulture:
			vocab[category] = tags
		default:
			return nil, fmt.Errorf("vocabulary %s: unknown category %q", path, key)
		}
	}

	return vocab, nil
}

// DefaultVocabulary is the built-in tag set used when no vocabulary file is
// configured.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		link.CategoryLanguage: {
			"python", "rust", "typescript", "javascript", "lisp", "common-lisp",
			"clojure", "scheme", "haskell", "go", "c", "cpp", "nix", "sql",
			"swift", "java", "ruby", "elixir", "zig",
		},
		link.CategoryTopic: {
			"ai", "llm", "compilers", "github-repo", "database", "devops",
			"web-dev", "academic-paper", "tutorial", "cli-tool",
			"distributed-systems", "security", "emulator",
		},
		link.CategoryCulture: {
			"tv", "movie", "fiction-book", "nonfiction-book", "music", "news",
			"politics", "podcast", "video", "gaming", "social-media",
		},
	}
}
