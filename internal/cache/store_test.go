package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langlang056/pdf-for-college/internal/config"
)

// exerciseStore runs the shared Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "results:missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.Set(ctx, "results:abc", []byte(`{"v":1}`)))
	got, err := s.Get(ctx, "results:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(got))

	require.NoError(t, s.Set(ctx, "results:abc", []byte(`{"v":2}`)))
	got, err = s.Get(ctx, "results:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "results:abc"))
	_, err = s.Get(ctx, "results:abc")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.Delete(ctx, "results:abc"))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestFileStore_SanitisesKey(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "results:ff00", []byte("x")))

	_, err = os.Stat(filepath.Join(dir, "results_ff00.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLStore(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "nested", "results.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLStore_RequiresDSN(t *testing.T) {
	_, err := OpenSQLStore(context.Background(), DialectPostgres, "")
	assert.Error(t, err)
}

func TestSQLStore_Bind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.bind("a = ? AND b = ?"))

	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "a = ? AND b = ?", lite.bind("a = ? AND b = ?"))
}

func TestOpenStore_Drivers(t *testing.T) {
	ctx := context.Background()
	out := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Cache.Driver = config.CacheDriverFile
	s, err := OpenStore(ctx, cfg, out)
	require.NoError(t, err)
	fs, ok := s.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(out, cfg.Output.CacheDir), fs.dir)
	require.NoError(t, s.Close())

	cfg.Cache.Driver = config.CacheDriverSQLite
	s, err = OpenStore(ctx, cfg, out)
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())
	assert.FileExists(t, filepath.Join(out, cfg.Output.CacheDir, "results.db"))

	cfg.Cache.Driver = "memcached"
	_, err = OpenStore(ctx, cfg, out)
	assert.Error(t, err)
}
