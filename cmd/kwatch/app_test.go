package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSetup_Yahoo(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, fmt.Sprintf(`
watchlist:
  file: %s
database:
  sqlite_path: %s
`, filepath.Join(dir, "watchlist.json"), filepath.Join(dir, "kwatch.db")))

	a, err := setup(context.Background(), path)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "yahoo", a.collector.Fetcher.Name())
	assert.Len(t, a.watchlist.Items(), 5, "default watchlist seeded")
}

func TestSetup_ReleasesResourcesOnError(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	// a directory where the watchlist file should be makes loading fail
	badWatchlist := filepath.Join(dir, "watchlist.json")
	require.NoError(t, os.Mkdir(badWatchlist, 0o755))

	path := writeConfig(t, dir, fmt.Sprintf(`
watchlist:
  file: %s
cache:
  redis_addr: %s
`, badWatchlist, mr.Addr()))

	_, err := setup(context.Background(), path)
	require.Error(t, err)

	assert.Eventually(t, func() bool { return mr.CurrentConnectionCount() == 0 },
		time.Second, 10*time.Millisecond, "redis connection closed")
}
