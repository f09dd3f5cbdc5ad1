package envconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := `
# database
DB_HOST=db.internal
DB_PORT = 5433
QUOTED="hello world"
EMPTY_LINE_ABOVE=yes
malformed line without equals
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("DB_HOST", "already-set")
	os.Unsetenv("DB_PORT")
	os.Unsetenv("QUOTED")
	t.Cleanup(func() {
		os.Unsetenv("DB_PORT")
		os.Unsetenv("QUOTED")
		os.Unsetenv("EMPTY_LINE_ABOVE")
	})

	require.NoError(t, LoadEnvFile(path))

	// Process environment wins over the file.
	assert.Equal(t, "already-set", os.Getenv("DB_HOST"))
	assert.Equal(t, "5433", os.Getenv("DB_PORT"))
	assert.Equal(t, "hello world", os.Getenv("QUOTED"))
	assert.Equal(t, "yes", os.Getenv("EMPTY_LINE_ABOVE"))
}

func TestLoadEnvFileMissing(t *testing.T) {
	err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestGetBool(t *testing.T) {
	t.Setenv("FLAG_TRUE", "true")
	t.Setenv("FLAG_ONE", "1")
	t.Setenv("FLAG_GARBAGE", "yes please")

	assert.True(t, GetBool("FLAG_TRUE", false))
	assert.True(t, GetBool("FLAG_ONE", false))
	assert.True(t, GetBool("FLAG_GARBAGE", true))
	assert.False(t, GetBool("FLAG_UNSET_KEY", false))
	assert.True(t, GetBool("FLAG_UNSET_KEY", true))
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TIMEOUT_OK", "2s")
	t.Setenv("TIMEOUT_BAD", "soonish")

	assert.Equal(t, 2*time.Second, GetDuration("TIMEOUT_OK", 5*time.Second))
	assert.Equal(t, 5*time.Second, GetDuration("TIMEOUT_BAD", 5*time.Second))
	assert.Equal(t, 5*time.Second, GetDuration("TIMEOUT_UNSET", 5*time.Second))
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	assert.Equal(t, "debug", GetLogLevel())

	t.Setenv("LOG_LEVEL", "verbose")
	assert.Equal(t, "info", GetLogLevel())
}
