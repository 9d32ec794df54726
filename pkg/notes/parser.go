package notes

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/daylogco/linkdex/pkg/link"
)

// Daily notes collect links under a "## Links" heading as list items, either
// markdown links with optional trailing commentary or plain descriptions
// followed by a bare URL. Nested bullets attribute child links to the parent
// bullet's URL.
var (
	markdownLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	bareURL      = regexp.MustCompile(`https?://[^\s\)]+`)
	linksHeading = regexp.MustCompile(`(?m)^## Links\s*$`)
	nextHeading  = regexp.MustCompile(`(?m)^## `)
	listItem     = regexp.MustCompile(`^(\s*)-\s+(.+)$`)
)

// ParseFile reads one daily note and returns the links in its Links section.
func ParseFile(file NoteFile) ([]link.Raw, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("reading note %s: %w", file.Path, err)
	}
	return Parse(string(data), file.Date, file.Path), nil
}

// Parse extracts links from note content. Returns nil when the note has no
// Links section.
func Parse(content string, sourceDate time.Time, sourceFile string) []link.Raw {
	section := linksSection(content)
	if section == "" {
		return nil
	}

	type stackEntry struct {
		indent int
		url    string
	}

	var links []link.Raw
	var parents []stackEntry

	for _, line := range strings.Split(section, "\n") {
		m := listItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		indent := indentLevel(m[1])
		body := strings.TrimSpace(m[2])

		for len(parents) > 0 && parents[len(parents)-1].indent >= indent {
			parents = parents[:len(parents)-1]
		}
		parentURL := ""
		if len(parents) > 0 {
			parentURL = parents[len(parents)-1].url
		}

		raw, ok := parseItem(body, sourceDate, sourceFile, indent, parentURL)
		if !ok {
			continue
		}

		links = append(links, raw)
		parents = append(parents, stackEntry{indent: indent, url: raw.URL})
	}

	return links
}

func linksSection(content string) string {
	loc := linksHeading.FindStringIndex(content)
	if loc == nil {
		return ""
	}

	rest := content[loc[1]:]
	if next := nextHeading.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return strings.TrimSpace(rest)
}

// indentLevel counts a tab as one level and four spaces as one level.
func indentLevel(indent string) int {
	tabs := strings.Count(indent, "\t")
	spaces := len(strings.ReplaceAll(indent, "\t", ""))
	return tabs + spaces/4
}

func parseItem(body string, sourceDate time.Time, sourceFile string, indent int, parentURL string) (link.Raw, bool) {
	if m := markdownLink.FindStringSubmatch(body); m != nil {
		desc := strings.Trim(markdownLink.ReplaceAllString(body, ""), " -")
		return link.Raw{
			URL:         m[2],
			Title:       m[1],
			Description: desc,
			SourceDate:  sourceDate,
			SourceFile:  sourceFile,
			IndentLevel: indent,
			ParentURL:   parentURL,
		}, true
	}

	if loc := bareURL.FindStringIndex(body); loc != nil {
		desc := strings.Trim(body[:loc[0]], " -")
		return link.Raw{
			URL:         body[loc[0]:loc[1]],
			Description: desc,
			SourceDate:  sourceDate,
			SourceFile:  sourceFile,
			IndentLevel: indent,
			ParentURL:   parentURL,
		}, true
	}

	return link.Raw{}, false
}
