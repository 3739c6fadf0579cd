package main

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellyname/internal/audit"
	"github.com/Nomadcxx/jellyname/internal/database"
	"github.com/Nomadcxx/jellyname/internal/probe"
	"github.com/Nomadcxx/jellyname/internal/ui"
)

func newAuditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [root]...",
		Short: "Compare named definitions with the probed frame size",
		Long: `Probe every canonically named video file with ffprobe and record the
files whose definition token disagrees with the frame size of their video
stream. Mismatches fixed since the previous run are marked resolved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				roots = a.cfg.Scan.Roots
			}
			if len(roots) == 0 {
				return fmt.Errorf("no library roots (pass them or set scan.roots)")
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			p := a.printer(cmd)
			opts := []audit.Option{
				audit.WithWorkers(a.cfg.Probe.Workers),
				audit.WithLogger(a.logger),
			}
			if !a.jsonOut && p.Color() {
				var mu sync.Mutex
				opts = append(opts, audit.WithProgress(func(done, total int) {
					mu.Lock()
					defer mu.Unlock()
					fmt.Fprintf(p.Writer(), "\r  %s %d/%d", p.Dim("probing"), done, total)
					if done == total {
						fmt.Fprintln(p.Writer())
					}
				}))
			}

			prober := probe.FFprobe{Binary: a.cfg.Probe.FFprobe, Timeout: a.cfg.Probe.Timeout}
			auditor, err := audit.New(prober, db, opts...)
			if err != nil {
				return err
			}

			var reports []*audit.Report
			for _, root := range roots {
				report, err := auditor.Audit(cmd.Context(), root)
				if err != nil {
					return err
				}
				reports = append(reports, report)
				if !a.jsonOut {
					printAudit(p, report)
				}
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), reports)
			}
			return nil
		},
	}
	cmd.AddCommand(newAuditListCmd(a))
	cmd.AddCommand(newAuditRunsCmd(a))
	return cmd
}

func printAudit(p *ui.Printer, r *audit.Report) {
	p.Section(r.Run.Root)
	p.Field("run", p.Dim(r.Run.ID))
	p.Field("probed", ui.FormatCount(r.Run.Files))
	p.Field("skipped", ui.FormatCount(r.Skipped))
	p.Field("resolved", fmt.Sprint(r.Resolved))
	p.Field("elapsed", ui.FormatDuration(r.Run.FinishedAt.Sub(r.Run.StartedAt)))

	if len(r.Mismatches) > 0 {
		fmt.Fprintln(p.Writer())
		p.WarningMsg("%d files are not the definition their name claims", len(r.Mismatches))
		p.Table([]string{"File", "Named", "Probed", "Frame", "Encoder"}, mismatchRows(r.Mismatches))
	}
	for _, f := range r.Failures {
		p.ErrorMsg("%s: %v", f.Path, f.Err)
	}
	if len(r.Mismatches) == 0 && len(r.Failures) == 0 {
		p.SuccessMsg("Every named definition matches its video stream")
	}
}

func mismatchRows(ms []database.Mismatch) [][]string {
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, []string{
			filepath.Base(m.Path),
			m.NamedDefinition,
			m.ProbedDefinition,
			fmt.Sprintf("%dx%d", m.Width, m.Height),
			orDash(m.Encoder),
		})
	}
	return rows
}

func newAuditListCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded definition mismatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ms, err := db.ListMismatches(all)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), ms)
			}
			p := a.printer(cmd)
			if len(ms) == 0 {
				p.SuccessMsg("No open mismatches")
				return nil
			}
			rows := mismatchRows(ms)
			for i, m := range ms {
				state := "open"
				if m.Resolved {
					state = "resolved"
				}
				rows[i] = append(rows[i], ui.FormatAgo(m.LastSeen), state)
			}
			p.Table([]string{"File", "Named", "Probed", "Frame", "Encoder", "Last seen", "State"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include resolved mismatches")
	return cmd
}

func newAuditRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent audit runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.RecentRuns(limit)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			p := a.printer(cmd)
			if len(runs) == 0 {
				p.InfoMsg("No audit runs yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.Root,
					ui.FormatAgo(r.StartedAt),
					ui.FormatCount(r.Files),
					fmt.Sprint(r.Mismatches),
					fmt.Sprint(r.Failures),
				})
			}
			p.Table([]string{"Root", "Started", "Files", "Mismatches", "Failures"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs")
	return cmd
}
