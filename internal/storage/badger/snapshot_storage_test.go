package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	dir := t.TempDir()
	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store, logger: arbor.NewLogger()}
}

func spreadSnapshot(id string, capturedAt time.Time) *models.DatasetSnapshot {
	return &models.DatasetSnapshot{
		ID:         id,
		Kind:       models.SnapshotKindSpreads,
		CapturedAt: capturedAt,
		RowCount:   2,
		Spreads: []models.SpreadRecord{
			{Country: "Germany", SpreadBP: -185.2},
			{Country: "Italy", SpreadBP: -30},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	storage := NewSnapshotStorage(newTestDB(t), arbor.NewLogger())

	snap := spreadSnapshot("snap_1", time.Now())
	require.NoError(t, storage.SaveSnapshot(snap))

	got, err := storage.GetSnapshot("snap_1")
	require.NoError(t, err)
	assert.Equal(t, models.SnapshotKindSpreads, got.Kind)
	require.Len(t, got.Spreads, 2)
	assert.Equal(t, "Germany", got.Spreads[0].Country)
	assert.InDelta(t, -185.2, got.Spreads[0].SpreadBP, 1e-9)
}

func TestSaveSnapshot_Validation(t *testing.T) {
	storage := NewSnapshotStorage(newTestDB(t), arbor.NewLogger())

	assert.Error(t, storage.SaveSnapshot(&models.DatasetSnapshot{Kind: models.SnapshotKindSpreads}))
	assert.Error(t, storage.SaveSnapshot(&models.DatasetSnapshot{ID: "snap_x"}))

	// Zero capture time is defaulted, not rejected.
	snap := &models.DatasetSnapshot{ID: "snap_y", Kind: models.SnapshotKindRatings}
	require.NoError(t, storage.SaveSnapshot(snap))
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestLatestSnapshot(t *testing.T) {
	storage := NewSnapshotStorage(newTestDB(t), arbor.NewLogger())

	base := time.Now().Add(-time.Hour)
	require.NoError(t, storage.SaveSnapshot(spreadSnapshot("snap_old", base)))
	require.NoError(t, storage.SaveSnapshot(spreadSnapshot("snap_new", base.Add(30*time.Minute))))

	latest, err := storage.LatestSnapshot(models.SnapshotKindSpreads)
	require.NoError(t, err)
	assert.Equal(t, "snap_new", latest.ID)

	_, err = storage.LatestSnapshot(models.SnapshotKindMerged)
	assert.Error(t, err)
}

func TestListSnapshots_KindIsolationAndLimit(t *testing.T) {
	storage := NewSnapshotStorage(newTestDB(t), arbor.NewLogger())

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, storage.SaveSnapshot(spreadSnapshot(
			"snap_"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, storage.SaveSnapshot(&models.DatasetSnapshot{
		ID:         "snap_ratings",
		Kind:       models.SnapshotKindRatings,
		CapturedAt: base,
	}))

	spreads, err := storage.ListSnapshots(models.SnapshotKindSpreads, 0)
	require.NoError(t, err)
	require.Len(t, spreads, 3)
	assert.Equal(t, "snap_c", spreads[0].ID, "newest first")

	limited, err := storage.ListSnapshots(models.SnapshotKindSpreads, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPruneSnapshots(t *testing.T) {
	storage := NewSnapshotStorage(newTestDB(t), arbor.NewLogger())

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, storage.SaveSnapshot(spreadSnapshot(
			"snap_"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))))
	}

	removed, err := storage.PruneSnapshots(models.SnapshotKindSpreads, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	remaining, err := storage.ListSnapshots(models.SnapshotKindSpreads, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "snap_e", remaining[0].ID)
	assert.Equal(t, "snap_d", remaining[1].ID)

	// Nothing more to prune.
	removed, err = storage.PruneSnapshots(models.SnapshotKindSpreads, 2)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPageStorage(t *testing.T) {
	storage := NewPageStorage(newTestDB(t), arbor.NewLogger())

	page := &models.PageCapture{
		ID:              "page_1",
		URL:             "https://example.com/spreads",
		Title:           "Spreads",
		ContentMarkdown: "# Spreads",
		FetchedAt:       time.Now(),
	}
	require.NoError(t, storage.SavePage(page))

	got, err := storage.GetPageByURL("https://example.com/spreads")
	require.NoError(t, err)
	assert.Equal(t, "page_1", got.ID)

	_, err = storage.GetPageByURL("https://example.com/missing")
	assert.Error(t, err)

	pages, err := storage.ListPages(0)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}
