package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so no stray .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, ":4000", cfg.Addr())
	assert.Equal(t, SourceFile, cfg.DataSource)
	assert.Equal(t, "locations.json", cfg.DataFile)
	assert.Equal(t, "locations:data", cfg.RedisKey)
	assert.Equal(t, 10000, cfg.GeneratorCount)
	assert.Equal(t, 20000, cfg.DefaultPageSize)
	assert.Equal(t, "*", cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", ":8088")
	t.Setenv("DATA_SOURCE", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("GENERATOR_SEED", "99")
	t.Setenv("DEFAULT_PAGE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8088", cfg.Port)
	assert.Equal(t, SourceRedis, cfg.DataSource)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, int64(99), cfg.GeneratorSeed)
	assert.Equal(t, 500, cfg.DefaultPageSize)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATA_FILE=/srv/data/locs.json\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DATA_FILE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/data/locs.json", cfg.DataFile)
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log_level: debug\ngenerator_count: 12\n"), 0o644))
	t.Setenv("CONFIG_FILE", file)
	t.Setenv("GENERATOR_COUNT", "34")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 34, cfg.GeneratorCount)
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdirTemp(t)

	t.Setenv("DATA_SOURCE", "postgres")
	_, err := Load()
	assert.ErrorContains(t, err, "unknown DATA_SOURCE")

	t.Setenv("DATA_SOURCE", "file")
	t.Setenv("DEFAULT_PAGE_SIZE", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "DEFAULT_PAGE_SIZE")

	t.Setenv("DEFAULT_PAGE_SIZE", "10")
	t.Setenv("CONFIG_FILE", "/does/not/exist.yaml")
	_, err = Load()
	assert.ErrorContains(t, err, "read config file")
}
