// Package statscmder provides the stats command for pipeline progress.
package statscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daylogco/linkdex/cmd/linkdex/setup"
)

const statsShortDesc string = "Show index totals and pipeline progress"

func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd)
		},
	}

	return cmd
}

func runStats(cmd *cobra.Command) error {
	cfg, err := setup.Config(cmd)
	if err != nil {
		return err
	}

	st, err := setup.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Links:          %d\n", stats.Total)
	fmt.Printf("Fetched:        %d\n", stats.Fetched)
	fmt.Printf("Fetch failed:   %d\n", stats.FetchFailed)
	fmt.Printf("Extract failed: %d\n", stats.ExtractFailed)
	fmt.Printf("Summarized:     %d\n", stats.Summarized)
	fmt.Printf("Tagged:         %d\n", stats.Tagged)
	fmt.Printf("Pending:        %d\n", stats.Pending)

	return nil
}
