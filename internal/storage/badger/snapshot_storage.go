package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/interfaces"
	"github.com/ternarybob/sovereign/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SnapshotStorage implements the SnapshotStorage interface for Badger
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SnapshotStorage) SaveSnapshot(snapshot *models.DatasetSnapshot) error {
	if snapshot.ID == "" {
		return fmt.Errorf("snapshot ID is required")
	}
	if snapshot.Kind == "" {
		return fmt.Errorf("snapshot kind is required")
	}

	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = time.Now()
	}

	if err := s.db.Store().Upsert(snapshot.ID, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStorage) GetSnapshot(id string) (*models.DatasetSnapshot, error) {
	var snapshot models.DatasetSnapshot
	if err := s.db.Store().Get(id, &snapshot); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("snapshot not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *SnapshotStorage) LatestSnapshot(kind string) (*models.DatasetSnapshot, error) {
	snapshots, err := s.ListSnapshots(kind, 1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no snapshot for kind: %s", kind)
	}
	return snapshots[0], nil
}

// ListSnapshots returns snapshots of a kind, newest first.
func (s *SnapshotStorage) ListSnapshots(kind string, limit int) ([]*models.DatasetSnapshot, error) {
	var snapshots []models.DatasetSnapshot
	query := badgerhold.Where("Kind").Eq(kind).SortBy("CapturedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&snapshots, query); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	out := make([]*models.DatasetSnapshot, len(snapshots))
	for i := range snapshots {
		out[i] = &snapshots[i]
	}
	return out, nil
}

// PruneSnapshots deletes all but the newest keep snapshots of a kind
// and returns the number removed.
func (s *SnapshotStorage) PruneSnapshots(kind string, keep int) (int, error) {
	snapshots, err := s.ListSnapshots(kind, 0)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(snapshots) <= keep {
		return 0, nil
	}

	removed := 0
	for _, snap := range snapshots[keep:] {
		if err := s.db.Store().Delete(snap.ID, &models.DatasetSnapshot{}); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return removed, fmt.Errorf("failed to prune snapshot %s: %w", snap.ID, err)
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug().Str("kind", kind).Int("removed", removed).Msg("Pruned snapshots")
	}
	return removed, nil
}
