// Package linkdexcmder
package linkdexcmder

import (
	"github.com/spf13/cobra"

	extractcmder "github.com/daylogco/linkdex/cmd/linkdex/extract"
	initcmder "github.com/daylogco/linkdex/cmd/linkdex/initcmd"
	refetchcmder "github.com/daylogco/linkdex/cmd/linkdex/refetch"
	retagcmder "github.com/daylogco/linkdex/cmd/linkdex/retag"
	searchcmder "github.com/daylogco/linkdex/cmd/linkdex/search"
	servecmder "github.com/daylogco/linkdex/cmd/linkdex/serve"
	statscmder "github.com/daylogco/linkdex/cmd/linkdex/stats"
	tagscmder "github.com/daylogco/linkdex/cmd/linkdex/tags"
	watchcmder "github.com/daylogco/linkdex/cmd/linkdex/watch"
)

const linkdexLongDesc string = `Linkdex turns the links saved in your daily notes into a searchable,
tagged, summarized index.

Run the pipeline with:
  linkdex extract      Scan notes, fetch pages, summarize and tag
  linkdex watch        Re-run automatically when notes change

Query the index with:
  linkdex search       Full-text search
  linkdex tags         List assigned tags
  linkdex stats        Pipeline progress
  linkdex serve        HTTP API, RSS feed and MCP server`

const linkdexShortDesc string = "Linkdex - enrich and index links from daily notes"

func NewLinkdexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkdex",
		Short: linkdexShortDesc,
		Long:  linkdexLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: ./config.toml, ~/.linkdex/config.toml)")

	// Add subcommands
	cmd.AddCommand(extractcmder.NewExtractCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(tagscmder.NewTagsCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(refetchcmder.NewRefetchCmd())
	cmd.AddCommand(retagcmder.NewRetagCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(initcmder.NewInitCmd())

	return cmd
}
