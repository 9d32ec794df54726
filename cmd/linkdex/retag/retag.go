// Package retagcmder provides the retag command, which reopens the tagging
// stage, typically after a vocabulary change.
package retagcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daylogco/linkdex/cmd/linkdex/setup"
)

type RetagCommander struct {
	clearExisting bool
	run           bool
}

const retagLongDesc string = `Reopen the tagging stage. By default only links whose tagging failed or
was skipped are reset; with --clear-existing every assignment is dropped and
the whole index is re-tagged, which is what you want after editing the
vocabulary.

Examples:
  linkdex retag
  linkdex retag --clear-existing --run`

const retagShortDesc string = "Reopen the tagging stage"

func NewRetagCmd() *cobra.Command {
	cmder := &RetagCommander{}

	cmd := &cobra.Command{
		Use:   "retag",
		Short: retagShortDesc,
		Long:  retagLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runRetag(cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.clearExisting, "clear-existing", false, "Drop all tag assignments and re-tag everything")
	cmd.Flags().BoolVar(&cmder.run, "run", false, "Run the pipeline immediately after resetting")

	return cmd
}

func (c *RetagCommander) runRetag(cmd *cobra.Command) error {
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

	n, err := st.ResetTags(cmd.Context(), c.clearExisting)
	if err != nil {
		return err
	}
	fmt.Printf("Reopened tagging for %d link(s)\n", n)

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
