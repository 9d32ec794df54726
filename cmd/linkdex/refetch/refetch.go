// Package refetchcmder provides the refetch command, which reopens fetched
// records whose extracted content came back empty or too short.
package refetchcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daylogco/linkdex/cmd/linkdex/setup"
)

type RefetchCommander struct {
	minLength int
	limit     int
	dryRun    bool
	run       bool
}

const refetchLongDesc string = `Reset fetched links whose extracted content is empty or shorter than the
minimum length, so the next extract run fetches them again. Their summaries
and tags are cleared along with the content.

Examples:
  linkdex refetch
  linkdex refetch --min-length 200 --run`

const refetchShortDesc string = "Reopen links with empty or near-empty content"

func NewRefetchCmd() *cobra.Command {
	cmder := &RefetchCommander{}

	cmd := &cobra.Command{
		Use:   "refetch",
		Short: refetchShortDesc,
		Long:  refetchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runRefetch(cmd)
		},
	}

	cmd.Flags().IntVar(&cmder.minLength, "min-length", 50, "Minimum content length in bytes")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 0, "Reset at most this many links (0 = all)")
	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "List what would be reset without doing it")
	cmd.Flags().BoolVar(&cmder.run, "run", false, "Run the pipeline immediately after resetting")

	return cmd
}

func (c *RefetchCommander) runRefetch(cmd *cobra.Command) error {
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

	if c.dryRun {
		recs, err := st.EmptyContent(cmd.Context(), c.minLength, c.limit)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			fmt.Printf("  %s (%s)\n", rec.URL, rec.FirstSeen.Format("2006-01-02"))
		}
		fmt.Printf("Would reset %d link(s) for refetching\n", len(recs))
		return nil
	}

	n, err := st.ResetFetch(cmd.Context(), c.minLength, c.limit)
	if err != nil {
		return err
	}
	fmt.Printf("Reset %d link(s) for refetching\n", n)

	if !c.run || n == 0 {
		return nil
	}

	pub, err := setup.Publisher(cfg)
	if err != nil {
		return err
	}
	defer pub.Close()

	coord, err := setup.Coordinator(cfg, st, pub, log)
	if err != nil {
		return err
	}

	res, err := coord.Process(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d link(s)\n", res.Processed)

	return nil
}
