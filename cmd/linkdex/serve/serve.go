// Package servecmder provides the serve command for running the HTTP API,
// RSS feed and MCP server over the link index.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daylogco/linkdex/api"
	"github.com/daylogco/linkdex/api/mcp"
	"github.com/daylogco/linkdex/cmd/linkdex/setup"
	"github.com/daylogco/linkdex/pkg/logger"
)

type ServeCommander struct {
	listen     string
	logFile    string
	disableMCP bool
}

const serveLongDesc string = `Serve the link index over HTTP. The server is read-only: it exposes
committed records through a JSON API, an RSS 2.0 feed at /rss, and an MCP
endpoint at /mcp for agent tooling.

Examples:
  linkdex serve
  linkdex serve --listen :8080 --no-mcp`

const serveShortDesc string = "Run the HTTP API, RSS feed and MCP server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.disableMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	log := setup.Logger(cmd)
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log = logger.Multi(log, logger.New(logger.WithJSON(true), logger.WithWriter(f)))
	}

	cfg, err := setup.Config(cmd)
	if err != nil {
		return err
	}

	st, err := setup.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	listen := cfg.API.Listen
	if c.listen != "" {
		listen = c.listen
	}

	server := api.NewServer(api.Config{
		ListenAddr:      listen,
		FeedTitle:       "Linkdex",
		FeedDescription: "Links saved in daily notes",
		SiteURL:         "http://localhost" + listen,
	}, st, log)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Store:  st,
		Noop:   c.disableMCP,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	if !c.disableMCP {
		server.Mount("/mcp", mcpServer.Handler())
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("api server: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}
