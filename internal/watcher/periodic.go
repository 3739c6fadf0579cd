package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/naming"
)

// PeriodicScanner re-checks every video file below the roots on an interval,
// catching files that appeared while no watch was running.
type PeriodicScanner struct {
	interval time.Duration
	roots    []string
	handler  Handler
	logger   *logging.Logger

	mu           sync.Mutex
	scanning     bool
	lastScan     time.Time
	lastSuccess  time.Time
	lastError    error
	skippedTicks int64
	healthy      bool
}

// ScannerStatus is the health of a PeriodicScanner.
type ScannerStatus struct {
	Healthy      bool      `json:"healthy"`
	LastScan     time.Time `json:"last_scan,omitempty"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	SkippedTicks int64     `json:"skipped_ticks"`
	Scanning     bool      `json:"scanning"`
}

func NewPeriodicScanner(interval time.Duration, roots []string, handler Handler, logger *logging.Logger) *PeriodicScanner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &PeriodicScanner{
		interval: interval,
		roots:    roots,
		handler:  handler,
		logger:   logger,
		healthy:  true,
	}
}

func (s *PeriodicScanner) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthy
}

// Status returns the current scanner status for health reporting
func (s *PeriodicScanner) Status() ScannerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := ScannerStatus{
		Healthy:      s.healthy,
		LastScan:     s.lastScan,
		LastSuccess:  s.lastSuccess,
		SkippedTicks: s.skippedTicks,
		Scanning:     s.scanning,
	}
	if s.lastError != nil {
		status.LastError = s.lastError.Error()
	}
	return status
}

// Start sweeps once immediately, then on every tick until ctx is done.
func (s *PeriodicScanner) Start(ctx context.Context) error {
	s.logger.Info("scanner", "Periodic scanner starting",
		logging.F("interval", s.interval.String()),
		logging.F("roots", len(s.roots)))

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scanner", "Periodic scanner stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *PeriodicScanner) tick(ctx context.Context) {
	s.mu.Lock()
	if s.scanning {
		s.skippedTicks++
		skipped := s.skippedTicks
		s.mu.Unlock()
		s.logger.Warn("scanner", "Periodic scan skipped - previous scan still running",
			logging.F("skipped_ticks", skipped))
		return
	}
	s.scanning = true
	s.mu.Unlock()

	err := s.runScan(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
	s.lastScan = time.Now()
	if err != nil {
		s.lastError = err
		s.healthy = false
		s.logger.Error("scanner", "Periodic scan failed", err)
		return
	}
	s.lastSuccess = s.lastScan
	s.lastError = nil
	s.healthy = true
}

func (s *PeriodicScanner) runScan(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panic: %v", r)
		}
	}()

	start := time.Now()
	processed, failed := s.scanRoots(ctx)
	s.logger.Info("scanner", "Periodic scan complete",
		logging.F("duration_ms", time.Since(start).Milliseconds()),
		logging.F("processed", processed),
		logging.F("errors", failed))
	return ctx.Err()
}

// scanRoots forwards every video file as a create event.
func (s *PeriodicScanner) scanRoots(ctx context.Context) (processed, failed int) {
	for _, root := range s.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				s.logger.Warn("scanner", "Directory inaccessible during scan",
					logging.F("path", path),
					logging.F("error", walkErr.Error()))
				return nil
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

			if err := s.handler.HandleFileEvent(ctx, FileEvent{Type: EventCreate, Path: path}); err != nil {
				s.logger.Warn("scanner", "Failed to process file during scan",
					logging.F("path", path),
					logging.F("error", err.Error()))
				failed++
			} else {
				processed++
			}
			return nil
		})
		if err != nil {
			s.logger.Warn("scanner", "Error walking directory",
				logging.F("path", root),
				logging.F("error", err.Error()))
		}
	}
	return processed, failed
}
