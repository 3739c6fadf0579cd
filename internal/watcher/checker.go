package watcher

import (
	"context"
	"path/filepath"

	"github.com/Nomadcxx/jellyname/internal/database"
	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/naming"
)

// RejectStore keeps the list of names needing attention. *database.DB
// implements it.
type RejectStore interface {
	RecordRejected(path string, reason database.RejectReason, suggestion string) error
	ClearRejected(path string) error
}

// Checker is the Handler used by watch mode: it validates the name of every
// new video file.
type Checker struct {
	store  RejectStore // optional
	logger *logging.Logger
}

func NewChecker(store RejectStore, logger *logging.Logger) *Checker {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Checker{store: store, logger: logger}
}

// Verdict is the outcome of checking one name.
type Verdict struct {
	Kind       naming.Kind
	Reason     database.RejectReason // empty when the name is canonical
	Suggestion string
}

// Check classifies a file name. Canonical names yield an empty Reason.
func Check(name string) Verdict {
	name = filepath.Base(name)
	if _, ok := naming.TryParseEpisode(name); ok {
		return Verdict{Kind: naming.KindEpisode}
	}
	if _, ok := naming.TryParseMovie(name); ok {
		return Verdict{Kind: naming.KindMovie}
	}
	if m, ok := naming.TryParseMovieCaseInsensitive(name); ok {
		return Verdict{Kind: naming.KindMovie, Reason: database.RejectCase, Suggestion: naming.FormatMovie(m)}
	}
	v := Verdict{Kind: naming.KindUnknown, Reason: database.RejectMalformed}
	if s, err := naming.FromRelease(name); err == nil {
		v.Suggestion = s.Name()
	}
	return v
}

func (c *Checker) HandleFileEvent(ctx context.Context, event FileEvent) error {
	if event.Type != EventCreate {
		if c.store != nil {
			return c.store.ClearRejected(event.Path)
		}
		return nil
	}

	v := Check(event.Path)
	if v.Reason == "" {
		c.logger.Info("watcher", "Name accepted", logging.F("file", filepath.Base(event.Path)), logging.F("kind", v.Kind))
		if c.store != nil {
			return c.store.ClearRejected(event.Path)
		}
		return nil
	}

	fields := []logging.Field{logging.F("path", event.Path), logging.F("reason", v.Reason)}
	if v.Suggestion != "" {
		fields = append(fields, logging.F("suggestion", v.Suggestion))
	}
	c.logger.Warn("watcher", "Name rejected", fields...)
	if c.store != nil {
		return c.store.RecordRejected(event.Path, v.Reason, v.Suggestion)
	}
	return nil
}
