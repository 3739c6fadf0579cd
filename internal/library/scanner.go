package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/naming"
	"github.com/Nomadcxx/jellyname/internal/quality"
)

// Rename is a file whose name only parsed case-insensitively.
type Rename struct {
	From string
	To   string
}

// Title is one sibling set found in a title folder.
type Title struct {
	Dir       string
	Kind      naming.Kind
	Key       string // case-folded title and year shared by the siblings
	Versions  []Version
	Selection Selection
	Renames   []Rename

	// Directory is the parsed folder name; Canonical is false when the
	// folder name does not follow the directory grammar.
	Directory naming.Directory
	Canonical bool
	// Suggested is the folder name with the selection applied, empty when
	// the folder is not canonical.
	Suggested string
}

// Outdated reports whether the folder name disagrees with its contents.
func (t Title) Outdated() bool {
	return t.Canonical && t.Suggested != filepath.Base(t.Dir)
}

// Report is the result of scanning one library root.
type Report struct {
	Root     string
	Titles   []Title
	Rejected []string // video files no grammar accepts
	Files    int
	Started  time.Time
	Elapsed  time.Duration
}

// Outdated lists the titles whose folder name needs updating.
func (r *Report) Outdated() []Title {
	var out []Title
	for _, t := range r.Titles {
		if t.Outdated() {
			out = append(out, t)
		}
	}
	return out
}

// Scanner walks a library root, one title folder per worker.
type Scanner struct {
	selector *Selector
	keywords *quality.Keywords
	workers  int
	logger   *logging.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers bounds the number of folders scanned in parallel.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the scanner's logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScanner returns a scanner classifying with kw and selecting with selector.
func NewScanner(selector *Selector, kw *quality.Keywords, opts ...Option) (*Scanner, error) {
	if selector == nil {
		return nil, fmt.Errorf("%w: nil selector", quality.ErrInvalidArgument)
	}
	if err := kw.Validate(); err != nil {
		return nil, err
	}
	s := &Scanner{
		selector: selector,
		keywords: kw,
		workers:  runtime.NumCPU(),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scan processes every folder directly under root.
func (s *Scanner) Scan(ctx context.Context, root string) (*Report, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading library %s: %w", root, err)
	}

	report := &Report{Root: root, Started: time.Now()}
	s.logger.Info("scanner", "Scanning library", logging.F("root", root), logging.F("folders", len(entries)))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			titles, rejected, files, err := s.ScanTitle(dir)
			if err != nil {
				s.logger.Warn("scanner", "Skipping folder", logging.F("dir", dir), logging.F("error", err.Error()))
				return nil
			}
			mu.Lock()
			report.Titles = append(report.Titles, titles...)
			report.Rejected = append(report.Rejected, rejected...)
			report.Files += files
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Titles, func(i, j int) bool {
		if report.Titles[i].Dir != report.Titles[j].Dir {
			return report.Titles[i].Dir < report.Titles[j].Dir
		}
		return report.Titles[i].Key < report.Titles[j].Key
	})
	sort.Strings(report.Rejected)
	report.Elapsed = time.Since(report.Started)

	s.logger.Info("scanner", "Scan complete",
		logging.F("root", root),
		logging.F("titles", len(report.Titles)),
		logging.F("files", report.Files),
		logging.F("rejected", len(report.Rejected)),
		logging.F("elapsed", report.Elapsed.String()))
	return report, nil
}

type parsed struct {
	kind    naming.Kind
	key     string
	version Version
	rename  *Rename
}

// ScanTitle classifies every video file below dir and ranks each sibling set.
// It returns the titles, the rejected files and the number of video files.
func (s *Scanner) ScanTitle(dir string) ([]Title, []string, int, error) {
	var files []parsed
	var rejected []string
	count := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !naming.IsVideoFile(path) {
			return nil
		}
		count++
		p, ok := s.parseFile(path)
		if !ok {
			rejected = append(rejected, path)
			s.logger.Debug("scanner", "Name not canonical", logging.F("path", path))
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, nil, 0, err
	}

	folder, canonical := naming.TryParseDirectory(filepath.Base(dir))

	byKey := make(map[string][]parsed)
	var keys []string
	for _, p := range files {
		if _, seen := byKey[p.key]; !seen {
			keys = append(keys, p.key)
		}
		byKey[p.key] = append(byKey[p.key], p)
	}
	sort.Strings(keys)

	titles := make([]Title, 0, len(keys))
	for _, key := range keys {
		group := byKey[key]
		t := Title{
			Dir:       dir,
			Kind:      group[0].kind,
			Key:       key,
			Directory: folder,
			Canonical: canonical,
		}
		for _, p := range group {
			t.Versions = append(t.Versions, p.version)
			if p.rename != nil {
				t.Renames = append(t.Renames, *p.rename)
			}
		}
		if t.Kind == naming.KindEpisode {
			t.Selection = s.selector.SelectEpisode(t.Versions)
		} else {
			t.Selection = s.selector.SelectMovie(t.Versions)
		}
		// only a folder holding a single title can carry its selection
		if canonical && len(keys) == 1 {
			d := folder
			t.Selection.ApplyTo(&d)
			t.Suggested = d.String()
		}
		titles = append(titles, t)
	}
	return titles, rejected, count, nil
}

func titleKey(title, year string) string {
	// a Caser is stateful, so each call gets its own
	key := cases.Fold().String(strings.NewReplacer(".", " ", "_", " ").Replace(title))
	key = strings.Join(strings.Fields(key), " ")
	if year != "" {
		key += " (" + year + ")"
	}
	return key
}

func (s *Scanner) parseFile(path string) (parsed, bool) {
	name := filepath.Base(path)
	if e, ok := naming.TryParseEpisode(name); ok {
		return parsed{
			kind:    naming.KindEpisode,
			key:     titleKey(e.Title, e.Year),
			version: EpisodeVersion(path, e, s.keywords),
		}, true
	}
	if m, ok := naming.TryParseMovie(name); ok {
		return parsed{
			kind:    naming.KindMovie,
			key:     titleKey(m.Title, m.Year),
			version: MovieVersion(path, m, s.keywords),
		}, true
	}
	if m, ok := naming.TryParseMovieCaseInsensitive(name); ok {
		return parsed{
			kind:    naming.KindMovie,
			key:     titleKey(m.Title, m.Year),
			version: MovieVersion(path, m, s.keywords),
			rename:  &Rename{From: path, To: filepath.Join(filepath.Dir(path), m.String())},
		}, true
	}
	return parsed{}, false
}
