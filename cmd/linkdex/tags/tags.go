// Package tagscmder provides the tags command for listing assigned tags.
package tagscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daylogco/linkdex/cmd/linkdex/setup"
)

const tagsShortDesc string = "List assigned tags with usage counts"

func NewTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: tagsShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTags(cmd)
		},
	}

	return cmd
}

func runTags(cmd *cobra.Command) error {
	cfg, err := setup.Config(cmd)
	if err != nil {
		return err
	}

	st, err := setup.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.Tags(cmd.Context())
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Println("No tags assigned yet.")
		return nil
	}

	for _, tc := range counts {
		fmt.Printf("%-24s %-10s %d\n", tc.Name, tc.Category, tc.Count)
	}

	return nil
}
