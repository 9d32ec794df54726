// Package watchcmder provides the watch command, which keeps the index
// current by re-running extraction whenever a note file changes on disk.
package watchcmder

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/daylogco/linkdex/cmd/linkdex/setup"
)

type WatchCommander struct {
	debounce time.Duration
}

const watchLongDesc string = `Watch the notes directory and re-run extraction whenever a daily note
is created or modified. Changes are debounced so that a burst of editor
saves triggers a single pass. Unchanged files are skipped by content
hash, so each pass only touches what actually moved.

Examples:
  linkdex watch
  linkdex watch --debounce 5s`

const watchShortDesc string = "Watch the notes directory and index new links as they appear"

func NewWatchCmd() *cobra.Command {
	cmder := &WatchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().DurationVar(&cmder.debounce, "debounce", 2*time.Second, "How long to wait after the last change before indexing")

	return cmd
}

func (c *WatchCommander) run(cmd *cobra.Command) error {
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

	coord, err := setup.Coordinator(cfg, st, pub, log)
	if err != nil {
		return err
	}

	runPass := func() {
		files, scanErr := setup.ScanNotes(cfg, "", "")
		if scanErr != nil {
			log.Error("scanning notes", "error", scanErr)
			return
		}
		res, runErr := coord.Run(cmd.Context(), files)
		if runErr != nil {
			log.Error("indexing pass", "error", runErr)
			return
		}
		if res.NewLinks > 0 || res.Processed > 0 {
			log.Info("indexing pass complete",
				"new_links", res.NewLinks,
				"processed", res.Processed,
				"fetch_failed", res.FetchFailed)
		}
	}

	// Catch up on anything that changed while we were not running.
	runPass()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(cfg.Notes.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.Notes.Dir, err)
	}

	log.Info("watching notes", "dir", cfg.Notes.Dir, "debounce", c.debounce.String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// The timer debounces editor save bursts into a single pass.
	timer := time.NewTimer(c.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case sig := <-sigChan:
			log.Info("shutting down", "signal", sig.String())
			return nil

		case <-cmd.Context().Done():
			return nil

		case <-timer.C:
			runPass()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".md") {
				continue
			}
			timer.Reset(c.debounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", watchErr)
		}
	}
}
