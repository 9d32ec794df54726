// Package searchcmder provides the search command for full-text queries over
// the link index.
package searchcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daylogco/linkdex/cmd/linkdex/setup"
	"github.com/daylogco/linkdex/pkg/link"
	"github.com/daylogco/linkdex/pkg/utils"
)

type SearchCommander struct {
	limit int
	tag   string
}

const searchLongDesc string = `Search the link index. Queries run over note titles, commentary, extracted
page content and generated summaries using SQLite FTS5 syntax.

Examples:
  linkdex search "slice internals"
  linkdex search compilers --limit 5
  linkdex search --tag llm`

const searchShortDesc string = "Full-text search over saved links"

func NewSearchCmd() *cobra.Command {
	cmder := &SearchCommander{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return cmder.run(cmd, query)
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 25, "Maximum number of results")
	cmd.Flags().StringVarP(&cmder.tag, "tag", "t", "", "Filter by tag instead of a text query")

	return cmd
}

func (c *SearchCommander) run(cmd *cobra.Command, query string) error {
	cfg, err := setup.Config(cmd)
	if err != nil {
		return err
	}

	st, err := setup.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	var records []*linkRecord
	switch {
	case c.tag != "":
		recs, err := st.ByTag(ctx, c.tag)
		if err != nil {
			return err
		}
		records = wrap(recs)
	case query != "":
		recs, err := st.Search(ctx, query, c.limit)
		if err != nil {
			return err
		}
		records = wrap(recs)
	default:
		return fmt.Errorf("a query or --tag is required")
	}

	if len(records) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for _, rec := range records {
		fmt.Println(rec.render())
	}
	fmt.Printf("%d result(s)\n", len(records))

	return nil
}

func wrap(recs []*link.Record) []*linkRecord {
	out := make([]*linkRecord, 0, len(recs))
	for _, rec := range recs {
		lr := &linkRecord{
			url:   rec.URL,
			title: rec.BestTitle(),
		}
		if !rec.FirstSeen.IsZero() {
			lr.firstSeen = rec.FirstSeen.Format("2006-01-02")
		}
		if rec.Summary != nil {
			lr.summary = *rec.Summary
		}
		for _, tag := range rec.Tags {
			lr.tags = append(lr.tags, tag.Name)
		}
		out = append(out, lr)
	}
	return out
}

type linkRecord struct {
	url       string
	title     string
	firstSeen string
	summary   string
	tags      []string
}

func (r *linkRecord) render() string {
	var sb strings.Builder
	title := r.title
	if title == "" {
		title = r.url
	}
	fmt.Fprintf(&sb, "%s\n  %s", title, r.url)
	if r.firstSeen != "" {
		fmt.Fprintf(&sb, "  (%s)", r.firstSeen)
	}
	if r.summary != "" {
		fmt.Fprintf(&sb, "\n  %s", utils.Truncate(r.summary, 160))
	}
	if len(r.tags) > 0 {
		fmt.Fprintf(&sb, "\n  tags: %s", strings.Join(r.tags, ", "))
	}
	sb.WriteString("\n")
	return sb.String()
}
