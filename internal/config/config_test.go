package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/paths"
	"github.com/Nomadcxx/jellyname/internal/quality"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	r, err := cfg.TierRanking()
	require.NoError(t, err)
	assert.Equal(t, quality.DefaultRanking.Order(), r.Order())
	assert.Equal(t, quality.DefaultKeywords(), cfg.Keywords)
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API.Addr, cfg.API.Addr)
	assert.Equal(t, 30*time.Second, cfg.Probe.Timeout)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Keywords.TopEnglish = "FraMeSToR"
	cfg.Scan.Roots = []string{"/media/movies", "/media/tv"}
	cfg.Scan.Workers = 3
	cfg.Probe.Timeout = 45 * time.Second
	cfg.Scan.RescanInterval = 6 * time.Hour
	cfg.API.Token = "secret"
	cfg.API.CORSOrigins = []string{"http://localhost:5173"}
	cfg.Logging.Level = "debug"
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "FraMeSToR", loaded.Keywords.TopEnglish)
	assert.Equal(t, cfg.Scan.Roots, loaded.Scan.Roots)
	assert.Equal(t, 3, loaded.Scan.Workers)
	assert.Equal(t, 45*time.Second, loaded.Probe.Timeout)
	assert.Equal(t, 6*time.Hour, loaded.Scan.RescanInterval)
	assert.Equal(t, "secret", loaded.API.Token)
	assert.Equal(t, []string{"http://localhost:5173"}, loaded.API.CORSOrigins)
	assert.Equal(t, logging.LevelDebug, loaded.LoggerConfig().Level)
}

func TestLoadFromRejectsInvalidRanking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Ranking.Order = []string{"HD", "HD"}
	require.NoError(t, cfg.SaveTo(path))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ranking.order")
}

func TestLoadFromRejectsEmptyKeyword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Keywords.Contrast = ""
	require.NoError(t, cfg.SaveTo(path))

	_, err := LoadFrom(path)
	assert.ErrorIs(t, err, quality.ErrInvalidArgument)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("JELLYNAME_API_ADDR", "0.0.0.0:9000")
	t.Setenv("JELLYNAME_KEYWORDS_KOREAN_PREMIUM", "HANGUK")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.API.Addr)
	assert.Equal(t, "HANGUK", cfg.Keywords.KoreanPremium)
}

func TestDatabasePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(paths.HomeEnv, dir)

	cfg := DefaultConfig()
	got, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "audit.db"), got)

	cfg.Database.Path = "/srv/audit.db"
	got, err = cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/audit.db", got)
}

func TestValidateNegativeWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Probe.Workers = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Scan.RescanInterval = -time.Minute
	assert.Error(t, cfg.Validate())
}

func TestFormatStringSlice(t *testing.T) {
	assert.Equal(t, "[]", formatStringSlice(nil))
	assert.Equal(t, `["a", "b c"]`, formatStringSlice([]string{"a", "b c"}))
}

func TestGenerateAPIToken(t *testing.T) {
	token, err := GenerateAPIToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := GenerateAPIToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
