package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/ui"
	"github.com/Nomadcxx/jellyname/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		noRecord bool
		rescan   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [root]...",
		Short: "Check the name of every new video file",
		Long: `Watch the library roots and validate each video file as it appears.
Rejected names are stored with a suggested canonical name; list them with
'jellyname rejected'. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				roots = a.cfg.Scan.Roots
			}
			if len(roots) == 0 {
				return fmt.Errorf("no library roots (pass them or set scan.roots)")
			}

			unlock, err := acquireLock()
			if err != nil {
				return err
			}
			defer unlock()

			var store watcher.RejectStore
			if !noRecord {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				store = db
			}

			checker := watcher.NewChecker(store, a.logger)
			w, err := watcher.NewWatcher(checker,
				watcher.WithRecursive(true),
				watcher.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Watch(roots); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !cmd.Flags().Changed("rescan") {
				rescan = a.cfg.Scan.RescanInterval
			}

			a.logger.Info("watch", "Watching library", logging.F("roots", len(roots)))
			if !a.jsonOut {
				a.printer(cmd).InfoMsg("Watching %d roots, Ctrl+C to stop", len(roots))
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return w.Start(ctx) })
			if rescan > 0 {
				periodic := watcher.NewPeriodicScanner(rescan, roots, checker, a.logger)
				g.Go(func() error { return periodic.Start(ctx) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "log rejected names without storing them")
	cmd.Flags().DurationVar(&rescan, "rescan", 0, "re-check every file on this interval (default: scan.rescan_interval)")
	return cmd
}

func newRejectedCmd(a *app) *cobra.Command {
	var forget []string

	cmd := &cobra.Command{
		Use:   "rejected",
		Short: "List file names rejected by watch or scan --record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			p := a.printer(cmd)
			for _, path := range forget {
				if err := db.ClearRejected(path); err != nil {
					return err
				}
				if !a.jsonOut {
					p.SuccessMsg("Cleared %s", path)
				}
			}
			if len(forget) > 0 {
				return nil
			}

			entries, err := db.ListRejected()
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				p.SuccessMsg("No rejected names")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Path, string(e.Reason), orDash(e.Suggestion), fmt.Sprint(e.Attempts), ui.FormatAgo(e.UpdatedAt)})
			}
			p.Table([]string{"Path", "Reason", "Suggestion", "Seen", "Last seen"}, rows)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&forget, "clear", nil, "forget the given paths")
	return cmd
}
