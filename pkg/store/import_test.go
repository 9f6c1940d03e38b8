package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `entries:
  - year: 2024
    sequence_order: 0
    latitude: 40.7128
    longitude: -74.0060
    location_name: New York
    visit_date: 2024-01-05
  - year: 2024
    sequence_order: 1
    latitude: 48.8566
    longitude: 2.3522
    location_name: Paris
  - year: 2024
    sequence_order: 2
    latitude: 123.0
    longitude: 2.0
    location_name: Nowhere
`

func TestImportYAML(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	n, err := ImportYAML(ctx, store, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "entry with latitude 123 must be skipped")

	got, err := store.ListTimeline(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "New York", got[0].Name())
	assert.Equal(t, 2024, got[0].VisitDate.Year())
	assert.Equal(t, "Paris", got[1].Name())
}

func TestImportYAML_Reimport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	_, err := ImportYAML(ctx, store, path)
	require.NoError(t, err)
	first, err := store.ListTimeline(ctx, 2024)
	require.NoError(t, err)

	_, err = ImportYAML(ctx, store, path)
	require.NoError(t, err)
	second, err := store.ListTimeline(ctx, 2024)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, SeedEntryID(2024, 0), first[0].ID)
}

func TestSeedEntryID(t *testing.T) {
	assert.Equal(t, SeedEntryID(2024, 3), SeedEntryID(2024, 3))
	assert.NotEqual(t, SeedEntryID(2024, 3), SeedEntryID(2024, 4))
	assert.NotEqual(t, SeedEntryID(2024, 3), SeedEntryID(2023, 3))
}

func TestImportYAML_Errors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	_, err := ImportYAML(ctx, store, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("entries: [unclosed"), 0o644))
	_, err = ImportYAML(ctx, store, bad)
	assert.Error(t, err)
}
