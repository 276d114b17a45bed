package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to a temp dir so no stray fetchqb.yaml is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdirTo(t, dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, &Config{
		LogLevel:          "info",
		LogFormat:         "pretty",
		EntityPlaceholder: "entity",
		DB:                "fetchqb.db",
		WatchDebounce:     100 * time.Millisecond,
		SelectedCount:     8,
	}, cfg)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_FileInWorkingDirectory(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fetchqb.yaml"), []byte(`
log-level: debug
catalog: metadata.cue
watch-debounce: 250ms
selected-count: 4
preserve-wildcards: true
`), 0o644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "metadata.cue", cfg.Catalog)
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, 4, cfg.SelectedCount)
	assert.True(t, cfg.PreserveWildcards)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	dir := chdir(t)
	_, err := Load(New(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-format: pretty\nentity-placeholder: account\n"), 0o644))

	t.Setenv("FETCHQB_LOG_FORMAT", "json")
	t.Setenv("FETCHQB_ENTITY_PLACEHOLDER", "contact")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "contact", cfg.EntityPlaceholder)
}

func TestBindFlags_FlagsWin(t *testing.T) {
	chdir(t)
	t.Setenv("FETCHQB_DB", "env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(KeyDB, "", "")
	flags.Int(KeySelectedCount, 8, "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--db", "flag.db", "--selected-count", "3"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.DB)
	assert.Equal(t, 3, cfg.SelectedCount)
	assert.False(t, v.IsSet("verbose"))
}

func TestValidate(t *testing.T) {
	base := Config{LogFormat: "json"}
	require.NoError(t, base.Validate())

	bad := base
	bad.LogFormat = "xml"
	assert.ErrorContains(t, bad.Validate(), "log-format")

	bad = base
	bad.WatchDebounce = -time.Second
	assert.ErrorContains(t, bad.Validate(), "watch-debounce")

	bad = base
	bad.SelectedCount = -1
	assert.ErrorContains(t, bad.Validate(), "selected-count")
}

func TestLogging(t *testing.T) {
	cfg := Config{LogLevel: "warn", LogFormat: "json"}
	lc := cfg.Logging(os.Stderr)
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, os.Stderr, lc.Writer)
}

// chdirTo changes the working directory to dir for the duration of the test,
// restoring the previous directory on cleanup (equivalent of t.Chdir, which
// requires Go 1.24).
func chdirTo(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("chdirTo: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdirTo: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("chdirTo: restoring %s: %v", prev, err)
		}
	})
}
