package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellyname/internal/database"
	"github.com/Nomadcxx/jellyname/internal/library"
	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/ui"
	"github.com/Nomadcxx/jellyname/internal/watcher"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		apply  bool
		record bool
	)

	cmd := &cobra.Command{
		Use:   "scan [root]...",
		Short: "Check title folders against the files inside them",
		Long: `Scan every title folder under the library roots, select the
representative version of each title and report folders whose
[ResolutionSource] label is out of date, files whose name only parses
case-insensitively and files no grammar accepts.

Roots default to scan.roots from the config file. With --apply, outdated
folders and case-folded files are renamed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				roots = a.cfg.Scan.Roots
			}
			if len(roots) == 0 {
				return fmt.Errorf("no library roots (pass them or set scan.roots)")
			}

			if apply {
				unlock, err := acquireLock()
				if err != nil {
					return err
				}
				defer unlock()
			}

			var db *database.DB
			if record {
				var err error
				if db, err = a.openDB(); err != nil {
					return err
				}
				defer db.Close()
			}

			kw := a.naming.Keywords()
			scanner, err := library.NewScanner(a.naming.Selector(), &kw,
				library.WithWorkers(a.cfg.Scan.Workers),
				library.WithLogger(a.logger))
			if err != nil {
				return err
			}

			var reports []*library.Report
			for _, root := range roots {
				report, err := scanner.Scan(cmd.Context(), root)
				if err != nil {
					return err
				}
				reports = append(reports, report)
				if db != nil {
					if err := recordRejected(db, report); err != nil {
						return err
					}
				}
			}

			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			} else {
				for _, r := range reports {
					printScan(a, cmd, r)
				}
			}

			if apply {
				return applyRenames(cmd.Context(), a, cmd, reports)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "rename outdated folders and case-folded files")
	cmd.Flags().BoolVar(&record, "record", false, "store rejected names in the database")
	return cmd
}

func printScan(a *app, cmd *cobra.Command, r *library.Report) {
	p := a.printer(cmd)
	p.Section(r.Root)
	p.Field("titles", p.Info(fmt.Sprint(len(r.Titles))))
	p.Field("video files", ui.FormatCount(r.Files))
	p.Field("elapsed", ui.FormatDuration(r.Elapsed))

	outdated := r.Outdated()
	if len(outdated) > 0 {
		rows := make([][]string, 0, len(outdated))
		for _, t := range outdated {
			rows = append(rows, []string{filepath.Base(t.Dir), t.Suggested, t.Selection.Label()})
		}
		fmt.Fprintln(p.Writer())
		p.WarningMsg("%d folders need a new label", len(outdated))
		p.Table([]string{"Folder", "Suggested", "Label"}, rows)
	}

	var renames []library.Rename
	for _, t := range r.Titles {
		renames = append(renames, t.Renames...)
	}
	if len(renames) > 0 {
		fmt.Fprintln(p.Writer())
		p.WarningMsg("%d files only parse case-insensitively", len(renames))
		for _, rn := range renames {
			fmt.Fprintf(p.Writer(), "  %s\n    → %s\n", p.Dim(rn.From), filepath.Base(rn.To))
		}
	}

	if len(r.Rejected) > 0 {
		fmt.Fprintln(p.Writer())
		p.ErrorMsg("%d files have malformed names", len(r.Rejected))
		for _, path := range r.Rejected {
			v := watcher.Check(path)
			if v.Suggestion != "" {
				fmt.Fprintf(p.Writer(), "  %s\n    ? %s\n", p.Path(path), v.Suggestion)
			} else {
				fmt.Fprintf(p.Writer(), "  %s\n", p.Path(path))
			}
		}
	}

	if len(outdated) == 0 && len(renames) == 0 && len(r.Rejected) == 0 {
		p.SuccessMsg("Library is consistent")
	}
}

func recordRejected(db *database.DB, r *library.Report) error {
	for _, path := range r.Rejected {
		v := watcher.Check(path)
		if err := db.RecordRejected(path, v.Reason, v.Suggestion); err != nil {
			return err
		}
	}
	for _, t := range r.Titles {
		for _, rn := range t.Renames {
			if err := db.RecordRejected(rn.From, database.RejectCase, filepath.Base(rn.To)); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyRenames renames case-folded files first, then the folders holding
// them, so recorded file paths stay valid.
func applyRenames(ctx context.Context, a *app, cmd *cobra.Command, reports []*library.Report) error {
	p := a.printer(cmd)
	var errs []error
	renamed := 0
	for _, r := range reports {
		for _, t := range r.Titles {
			for _, rn := range t.Renames {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := renameNoClobber(rn.From, rn.To); err != nil {
					errs = append(errs, err)
					continue
				}
				renamed++
				a.logger.Info("scan", "Renamed file", logging.F("from", rn.From), logging.F("to", rn.To))
			}
		}
		for _, t := range r.Outdated() {
			to := filepath.Join(filepath.Dir(t.Dir), t.Suggested)
			if err := renameNoClobber(t.Dir, to); err != nil {
				errs = append(errs, err)
				continue
			}
			renamed++
			a.logger.Info("scan", "Renamed folder", logging.F("from", t.Dir), logging.F("to", to))
		}
	}
	if !a.jsonOut {
		p.SuccessMsg("Renamed %d entries", renamed)
	}
	return errors.Join(errs...)
}

func renameNoClobber(from, to string) error {
	if from == to {
		return nil
	}
	if _, err := os.Lstat(to); err == nil {
		return fmt.Errorf("rename %s: %s already exists", from, to)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Rename(from, to)
}
