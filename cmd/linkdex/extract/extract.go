// Package extractcmder provides the extract command, which runs the full
// pipeline: scan notes, fetch pages, extract text, summarize and tag.
package extractcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daylogco/linkdex/cmd/linkdex/setup"
	"github.com/daylogco/linkdex/pkg/cliui"
	"github.com/daylogco/linkdex/pkg/pipeline"
)

type ExtractCommander struct {
	from        string
	to          string
	noFetch     bool
	noSummarize bool
	noTag       bool
}

const extractLongDesc string = `Scan daily notes for links and run every unfinished record through the
pipeline: fetch the page, extract its text, generate a summary and assign
vocabulary tags.

Re-running is safe: finished records are skipped, and interrupted runs
resume where they left off. Transient failures (timeouts, throttling,
server errors) are retried when pipeline.retry_failed is set; permanent
failures are not.

Examples:
  linkdex extract
  linkdex extract --from 2024-01-01 --to 2024-03-31`

const extractShortDesc string = "Scan notes and enrich new links"

func NewExtractCmd() *cobra.Command {
	cmder := &ExtractCommander{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: extractShortDesc,
		Long:  extractLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.from, "from", "", "Only scan notes on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&cmder.to, "to", "", "Only scan notes on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&cmder.noFetch, "no-fetch", false, "Skip fetching web pages")
	cmd.Flags().BoolVar(&cmder.noSummarize, "no-summarize", false, "Skip summarization")
	cmd.Flags().BoolVar(&cmder.noTag, "no-tag", false, "Skip auto-tagging")

	return cmd
}

func (c *ExtractCommander) run(cmd *cobra.Command) error {
	log := setup.Logger(cmd)

	cfg, err := setup.Config(cmd)
	if err != nil {
		return err
	}

	st, err := setup.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	pub, err := setup.Publisher(cfg)
	if err != nil {
		return err
	}
	defer pub.Close()

	coord, err := setup.Coordinator(cfg, st, pub, log, func(opts *pipeline.Options) {
		opts.SkipFetch = c.noFetch
		opts.SkipSummarize = c.noSummarize
		opts.SkipTag = c.noTag
	})
	if err != nil {
		return err
	}

	files, err := setup.ScanNotes(cfg, c.from, c.to)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn("no daily notes found", "dir", cfg.Notes.Dir)
	}

	var res *pipeline.Result
	err = cliui.Step(os.Stderr, fmt.Sprintf("Indexing links from %d notes", len(files)), func() error {
		var runErr error
		res, runErr = coord.Run(cmd.Context(), files)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Scanned %d notes (%d unchanged), %d new links, %d processed, %d already done\n",
		res.FilesScanned, res.FilesSkipped, res.NewLinks, res.Processed, res.LinksSkipped)
	fmt.Printf("Index: %d links, %d fetched, %d summarized, %d tagged, %d pending\n",
		stats.Total, stats.Fetched, stats.Summarized, stats.Tagged, stats.Pending)

	return nil
}
