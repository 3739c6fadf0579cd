package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellyname/internal/database"
	"github.com/Nomadcxx/jellyname/internal/probe"
	"github.com/Nomadcxx/jellyname/internal/quality"
)

type fakeProber map[string]probe.Info

func (f fakeProber) Probe(ctx context.Context, path string) (probe.Info, error) {
	if err := ctx.Err(); err != nil {
		return probe.Info{}, err
	}
	info, ok := f[filepath.Base(path)]
	if !ok {
		return probe.Info{}, errors.New("Invalid data found when processing input")
	}
	return info, nil
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
}

func newAuditor(t *testing.T, p probe.Prober) (*Auditor, *database.DB) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	a, err := New(p, db, WithWorkers(2))
	require.NoError(t, err)
	return a, db
}

const inceptionDir = "Inception.2010[8.8-2.4M-PG-13][1080x1]"

func TestAudit(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		inceptionDir+"/Inception.2010.1080p.BluRay.x265.mkv",
		inceptionDir+"/Inception.2010.720p.WEB-DL.x264.mkv",
		inceptionDir+"/Inception.2010.Upscale.1080p.x264.mkv",
		inceptionDir+"/Inception.2010.mkv",
		inceptionDir+"/Inception.2010.2160p.x265.mkv",
		inceptionDir+"/notes.txt",
		"Show.2019[7.5-10K-TV-MA][1080F0]/Show.S01E01.1080p.x265.ffmpeg.mkv",
		"Unsorted/random name.mkv",
		".trash/Old.2001.1080p.mkv",
	)
	prober := fakeProber{
		"Inception.2010.1080p.BluRay.x265.mkv": {Width: 1920, Height: 800},
		"Inception.2010.720p.WEB-DL.x264.mkv":  {Width: 1280, Height: 536},
		"Show.S01E01.1080p.x265.ffmpeg.mkv":     {Width: 1280, Height: 720},
		// the 2160p file is missing from the prober and fails
	}
	a, db := newAuditor(t, prober)

	report, err := a.Audit(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Run.Files)
	assert.Equal(t, 3, report.Skipped)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Inception.2010.2160p.x265.mkv", filepath.Base(report.Failures[0].Path))

	require.Len(t, report.Mismatches, 1)
	m := report.Mismatches[0]
	assert.Equal(t, "Show.S01E01.1080p.x265.ffmpeg.mkv", filepath.Base(m.Path))
	assert.Equal(t, quality.P1080.String(), m.NamedDefinition)
	assert.Equal(t, quality.P720.String(), m.ProbedDefinition)
	assert.Equal(t, "ffmpeg", m.Encoder)

	stored, err := db.ListMismatches(false)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, m.Path, stored[0].Path)

	runs, err := db.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 4, runs[0].Files)
	assert.Equal(t, 1, runs[0].Mismatches)
	assert.Equal(t, 1, runs[0].Failures)
}

func TestAuditResolvesFixedFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "Show.2019[7.5-10K-TV-MA][1080F0]/Show.S01E01.1080p.x265.ffmpeg.mkv")
	prober := fakeProber{"Show.S01E01.1080p.x265.ffmpeg.mkv": {Width: 1280, Height: 720}}
	a, db := newAuditor(t, prober)

	_, err := a.Audit(context.Background(), root)
	require.NoError(t, err)

	// re-encoded at full size
	prober["Show.S01E01.1080p.x265.ffmpeg.mkv"] = probe.Info{Width: 1920, Height: 1080}
	report, err := a.Audit(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, report.Mismatches)
	assert.Equal(t, int64(1), report.Resolved)

	open, err := db.ListMismatches(false)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestAuditProgress(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A/A.2001.1080p.mkv", "B/B.2002.720p.mkv")
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	var calls atomic.Int32
	a, err := New(fakeProber{
		"A.2001.1080p.mkv": {Width: 1920, Height: 1080},
		"B.2002.720p.mkv":  {Width: 1280, Height: 720},
	}, db, WithProgress(func(done, total int) {
		calls.Add(1)
		assert.Equal(t, 2, total)
	}))
	require.NoError(t, err)

	_, err = a.Audit(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAuditCancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A.2001[-----]/A.2001.1080p.mkv")
	a, _ := newAuditor(t, fakeProber{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Audit(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

// cancellingProber cancels the audit on the call after the first `after` files.
type cancellingProber struct {
	fakeProber
	after  int32
	calls  atomic.Int32
	cancel context.CancelFunc
}

func (p *cancellingProber) Probe(ctx context.Context, path string) (probe.Info, error) {
	if p.calls.Add(1) > p.after {
		p.cancel()
		return probe.Info{}, context.Canceled
	}
	return p.fakeProber.Probe(ctx, path)
}

func TestAuditInterruptedClosesRun(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"A.2001[-----]/A.2001.1080p.mkv",
		"B.2002[-----]/B.2002.1080p.mkv",
		"C.2003[-----]/C.2003.1080p.mkv",
		"D.2004[-----]/D.2004.1080p.mkv",
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := &cancellingProber{
		fakeProber: fakeProber{"A.2001.1080p.mkv": {Width: 1920, Height: 1080}},
		after:      1,
		cancel:     cancel,
	}
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()
	a, err := New(p, db, WithWorkers(1))
	require.NoError(t, err)

	_, err = a.Audit(ctx, root)
	require.ErrorIs(t, err, context.Canceled)

	runs, err := db.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].FinishedAt.IsZero(), "interrupted run left open")
	assert.Equal(t, 2, runs[0].Files)
}

func TestAuditMissingRoot(t *testing.T) {
	a, _ := newAuditor(t, fakeProber{})
	_, err := a.Audit(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, quality.ErrInvalidArgument)
}
