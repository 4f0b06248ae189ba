package titles

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justchokingaround/anidb/internal/anidb"
)

const titlesDoc = `<?xml version="1.0" encoding="UTF-8"?>
<!-- upstream comment that a re-serialization would drop -->
<animetitles>
  <anime aid="22">
    <title type="main" xml:lang="x-jat">Shinseiki Evangelion</title>
    <title type="official" xml:lang="en">Neon Genesis Evangelion</title>
  </anime>
</animetitles>
`

func TestDocumentCache_StoresSourceVerbatim(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DocumentFile)
	cache := NewDocumentCache(path)

	entries, err := anidb.UnpackTitles([]byte(titlesDoc))
	require.NoError(t, err)
	require.NoError(t, cache.Save(ctx, anidb.TitlesIndex{Entries: entries, Source: []byte(titlesDoc)}))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, titlesDoc, string(written))

	res := cache.Load(ctx)
	require.True(t, res.Found(), "load failed: %v", res.Err())
	assert.Equal(t, entries, res.Index().Entries)
	assert.Equal(t, []byte(titlesDoc), res.Index().Source)
}

func TestDocumentCache_SerializesWithoutSource(t *testing.T) {
	ctx := context.Background()
	cache := NewDocumentCache(filepath.Join(t.TempDir(), DocumentFile))
	data := sampleIndex("nosource")

	require.NoError(t, cache.Save(ctx, data))

	res := cache.Load(ctx)
	require.True(t, res.Found(), "load failed: %v", res.Err())
	assert.Equal(t, data.Entries, res.Index().Entries)
}

func TestDocumentCache_Misses(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		res := NewDocumentCache(filepath.Join(t.TempDir(), DocumentFile)).Load(ctx)

		assert.False(t, res.Found())
	})

	t.Run("not xml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DocumentFile)
		require.NoError(t, os.WriteFile(path, []byte("<animetitles><anime aid="), 0o644))

		assert.False(t, NewDocumentCache(path).Load(ctx).Found())
	})

	t.Run("bad aid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DocumentFile)
		require.NoError(t, os.WriteFile(path, []byte(`<animetitles><anime aid="x"/></animetitles>`), 0o644))

		assert.False(t, NewDocumentCache(path).Load(ctx).Found())
	})
}

func TestCascade_SnapshotHitRepopulatesDocumentVerbatim(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	document := NewDocumentCache(filepath.Join(dir, DocumentFile))
	snapshot := NewSnapshotCache(filepath.Join(dir, SnapshotFile))

	entries, err := anidb.UnpackTitles([]byte(titlesDoc))
	require.NoError(t, err)
	require.NoError(t, snapshot.Save(ctx, anidb.TitlesIndex{Entries: entries, Source: []byte(titlesDoc)}))

	// Document probed first and missing, snapshot hits
	_, err = NewResolver(nil).Resolve(ctx, []Backend{document, snapshot}, failingRemote, false)
	require.NoError(t, err)

	written, err := os.ReadFile(document.Path())
	require.NoError(t, err)
	assert.Equal(t, titlesDoc, string(written))
}
