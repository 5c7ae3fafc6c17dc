package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/delving/itemnav/lib/store"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useProfile(t *testing.T, dir string, noSession bool) {
	viper.Set("profile-dir", dir)
	viper.Set("no-session-storage", noSession)
	viper.Set("session-ttl", 0)
	t.Cleanup(viper.Reset)
}

func TestWrapString(t *testing.T) {
	wrapped := WrapString(strings.Repeat("word ", 30))
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
}

func TestProfileWithSessionStorage(t *testing.T) {
	dir := t.TempDir()
	useProfile(t, dir, false)

	p, err := OpenProfile()
	require.NoError(t, err)
	assert.Equal(t, store.BackendSession, p.Store.Backend())
	require.NoError(t, p.Store.Set("key", "value"))
	require.NoError(t, p.Close())
	assert.FileExists(t, filepath.Join(dir, SessionFile))

	p, err = OpenProfile()
	require.NoError(t, err)
	defer p.Close()
	value, ok, err := p.Store.Get("key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestProfileWithCookies(t *testing.T) {
	dir := t.TempDir()
	useProfile(t, dir, true)

	p, err := OpenProfile()
	require.NoError(t, err)
	assert.Equal(t, store.BackendCookie, p.Store.Backend())
	require.NoError(t, p.Store.Set("key", "value"))
	require.NoError(t, p.Close())

	data, err := os.ReadFile(filepath.Join(dir, CookieFile))
	require.NoError(t, err)
	assert.Equal(t, "key=value\n", string(data))
	assert.NoFileExists(t, filepath.Join(dir, SessionFile))
}

func TestProfileFallsBackToCookies(t *testing.T) {
	dir := t.TempDir()
	// a directory where the database file should be makes sqlite fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, SessionFile), 0o700))
	useProfile(t, dir, false)

	p, err := OpenProfile()
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, store.BackendCookie, p.Store.Backend())
}
