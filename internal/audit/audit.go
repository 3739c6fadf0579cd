// Package audit checks that the definition a file name claims matches the
// frame size of its video stream.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Nomadcxx/jellyname/internal/database"
	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/naming"
	"github.com/Nomadcxx/jellyname/internal/probe"
	"github.com/Nomadcxx/jellyname/internal/quality"
)

// Store persists audit results. *database.DB implements it.
type Store interface {
	StartRun(root string) (database.Run, error)
	FinishRun(run database.Run) error
	UpsertMismatch(m database.Mismatch) error
	ResolveStale(root, runID string) (int64, error)
}

// Failure is a file ffprobe could not read.
type Failure struct {
	Path string
	Err  error
}

// MarshalJSON writes the error as its message.
func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}{f.Path, f.Err.Error()})
}

// Report is the outcome of one audit run.
type Report struct {
	Run        database.Run
	Mismatches []database.Mismatch
	Failures   []Failure
	// Skipped counts video files without a definition claim to check:
	// unparsable names, names without a definition token and upscales.
	Skipped  int
	Resolved int64
}

// Auditor probes every canonically named video file below a root.
type Auditor struct {
	prober   probe.Prober
	store    Store
	workers  int
	logger   *logging.Logger
	progress func(done, total int)
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithWorkers bounds concurrent ffprobe processes.
func WithWorkers(n int) Option {
	return func(a *Auditor) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(a *Auditor) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithProgress reports each probed file. fn is called from worker
// goroutines and must be safe for concurrent use.
func WithProgress(fn func(done, total int)) Option {
	return func(a *Auditor) { a.progress = fn }
}

// New creates an Auditor.
func New(p probe.Prober, store Store, opts ...Option) (*Auditor, error) {
	if p == nil || store == nil {
		return nil, fmt.Errorf("%w: auditor needs a prober and a store", quality.ErrInvalidArgument)
	}
	a := &Auditor{
		prober:  p,
		store:   store,
		workers: max(1, runtime.NumCPU()/2),
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type candidate struct {
	path    string
	named   quality.DefinitionType
	encoder string
}

// Audit probes the files below root, records mismatches and resolves the
// ones that were fixed since the last run.
func (a *Auditor) Audit(ctx context.Context, root string) (*Report, error) {
	root = filepath.Clean(root)
	candidates, skipped, err := collect(ctx, root)
	if err != nil {
		return nil, err
	}

	run, err := a.store.StartRun(root)
	if err != nil {
		return nil, fmt.Errorf("starting audit run: %w", err)
	}
	a.logger.Info("audit", "Auditing library", logging.F("root", root), logging.F("files", len(candidates)), logging.F("run", run.ID))

	report := &Report{Run: run, Skipped: skipped}
	var mu sync.Mutex
	var done atomic.Int64
	total := len(candidates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := a.prober.Probe(gctx, c.path)
			if a.progress != nil {
				a.progress(int(done.Add(1)), total)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				a.logger.Warn("audit", "Probe failed", logging.F("path", c.path), logging.F("error", err.Error()))
				mu.Lock()
				report.Failures = append(report.Failures, Failure{Path: c.path, Err: err})
				mu.Unlock()
				return nil
			}

			probed := quality.ClassifyFromPixels(info.Width, info.Height)
			if probed == c.named {
				return nil
			}
			m := database.Mismatch{
				Path:             c.path,
				NamedDefinition:  c.named.String(),
				ProbedDefinition: probed.String(),
				Width:            info.Width,
				Height:           info.Height,
				Encoder:          c.encoder,
				RunID:            run.ID,
			}
			if err := a.store.UpsertMismatch(m); err != nil {
				return fmt.Errorf("recording %s: %w", c.path, err)
			}
			mu.Lock()
			report.Mismatches = append(report.Mismatches, m)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// close the run with what was probed so it is not left open
		mu.Lock()
		report.Run.Files = int(done.Load())
		report.Run.Mismatches = len(report.Mismatches)
		report.Run.Failures = len(report.Failures)
		mu.Unlock()
		if ferr := a.store.FinishRun(report.Run); ferr != nil {
			a.logger.Warn("audit", "Unable to close interrupted run", logging.F("run", run.ID), logging.F("error", ferr.Error()))
		}
		a.logger.Warn("audit", "Audit interrupted", logging.F("root", root), logging.F("probed", report.Run.Files), logging.F("error", err.Error()))
		return nil, err
	}

	sort.Slice(report.Mismatches, func(i, j int) bool { return report.Mismatches[i].Path < report.Mismatches[j].Path })
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Path < report.Failures[j].Path })

	report.Run.Files = len(candidates)
	report.Run.Mismatches = len(report.Mismatches)
	report.Run.Failures = len(report.Failures)

	resolved, err := a.store.ResolveStale(root, run.ID)
	if err != nil {
		if ferr := a.store.FinishRun(report.Run); ferr != nil {
			a.logger.Warn("audit", "Unable to close interrupted run", logging.F("run", run.ID), logging.F("error", ferr.Error()))
		}
		return nil, fmt.Errorf("resolving stale mismatches: %w", err)
	}
	report.Resolved = resolved

	if err := a.store.FinishRun(report.Run); err != nil {
		return nil, fmt.Errorf("finishing audit run: %w", err)
	}

	a.logger.Info("audit", "Audit complete",
		logging.F("root", root),
		logging.F("mismatches", report.Run.Mismatches),
		logging.F("failures", report.Run.Failures),
		logging.F("resolved", resolved))
	return report, nil
}

// collect lists the video files whose names claim a definition.
func collect(ctx context.Context, root string) ([]candidate, int, error) {
	var out []candidate
	skipped := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !naming.IsVideoFile(path) {
			return nil
		}
		attrs, ok := claimedAttributes(d.Name())
		if !ok || attrs.Definition == "" || attrs.IsUpscaled() {
			skipped++
			return nil
		}
		out = append(out, candidate{
			path:    path,
			named:   quality.ClassifyFromName(attrs),
			encoder: attrs.EncoderTool,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("walking %s: %w", root, err)
	}
	return out, skipped, nil
}

func claimedAttributes(name string) (naming.Attributes, bool) {
	if e, ok := naming.TryParseEpisode(name); ok {
		return e.Attributes, true
	}
	if m, ok := naming.TryParseMovie(name); ok {
		return m.Attributes, true
	}
	return naming.Attributes{}, false
}
