package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellyname/internal/paths"
)

// execute runs the root command in an isolated app dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if os.Getenv(paths.HomeEnv) == "" {
		t.Setenv(paths.HomeEnv, t.TempDir())
	}
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jellyname dev\n", out)
}

func TestParseJSON(t *testing.T) {
	out, err := execute(t, "--json", "parse",
		"Inception.2010.1080p.BluRay.x265.mkv",
		"Show.S02E05.720p.mkv",
		"Inception.2010[8.8-2.4M-PG-13][1080x2]")
	require.NoError(t, err)

	var results []struct {
		Kind      string `json:"kind"`
		Canonical string `json:"canonical"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "movie", results[0].Kind)
	assert.Equal(t, "episode", results[1].Kind)
	assert.Equal(t, "directory", results[2].Kind)
	assert.Equal(t, "Inception.2010[8.8-2.4M-PG-13][1080x2]", results[2].Canonical)
}

func TestParseText(t *testing.T) {
	out, err := execute(t, "parse", "Inception.2010.1080p.BluRay.x265.mkv")
	require.NoError(t, err)
	assert.Contains(t, out, "Inception.2010.1080p.BluRay.x265.mkv")
	assert.Contains(t, out, "1080p")
	assert.Contains(t, out, "BluRay")
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := execute(t, "parse", "random name.mkv")
	assert.ErrorIs(t, err, errRejected)

	_, err = execute(t, "parse", "--kind", "album", "Inception.2010.mkv")
	assert.Error(t, err)
}

func TestClassifyJSON(t *testing.T) {
	out, err := execute(t, "--json", "classify", "Inception.2010.1080p.BluRay.x265-RARBG.mkv")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "TopX265BluRay", results[0]["encoder"])
	assert.Equal(t, true, results[0]["genuine_hd"])
}

func TestRank(t *testing.T) {
	out, err := execute(t, "--json", "rank",
		"Inception.2010.720p.x264.mkv",
		"Inception.2010.1080p.BluRay.x265-RARBG.mkv")
	require.NoError(t, err)

	var res struct {
		Encoder string `json:"encoder"`
		Label   string `json:"label"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "TopX265BluRay", res.Encoder)
	assert.Equal(t, "[1080x0]", res.Label)
}

func TestRankDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Inception.2010.720p.x264.mkv", "Inception.2010.1080p.BluRay.x265-RARBG.mkv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	out, err := execute(t, "rank", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "[1080x0]")
	assert.NotContains(t, out, "notes.txt")

	_, err = execute(t, "rank")
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	out, err := execute(t, "--json", "suggest", "Inception.2010.1080p.BluRay.x264-SPARKS")
	require.NoError(t, err)

	var results []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "movie", results[0]["kind"])
	assert.Contains(t, results[0]["suggested"], "Inception.2010.1080p.BluRay")
}

func TestConfigInitShowPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(paths.HomeEnv, home)

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.toml")+"\n", out)

	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = execute(t, "config", "init")
	assert.Error(t, err, "init must not overwrite without --force")

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, maskedToken)
	assert.Contains(t, out, "[ranking]")
}

func TestLock(t *testing.T) {
	t.Setenv(paths.HomeEnv, t.TempDir())

	unlock, err := acquireLock()
	require.NoError(t, err)

	_, err = acquireLock()
	assert.ErrorIs(t, err, errLocked)

	unlock()
	unlock2, err := acquireLock()
	require.NoError(t, err)
	unlock2()
}

func TestWatchRequiresRoots(t *testing.T) {
	_, err := execute(t, "watch", "--rescan", "1m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no library roots")
}
