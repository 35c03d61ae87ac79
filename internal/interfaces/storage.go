package interfaces

import "github.com/ternarybob/sovereign/internal/models"

// SnapshotStorage persists dataset snapshots.
type SnapshotStorage interface {
	SaveSnapshot(snapshot *models.DatasetSnapshot) error
	GetSnapshot(id string) (*models.DatasetSnapshot, error)
	LatestSnapshot(kind string) (*models.DatasetSnapshot, error)
	ListSnapshots(kind string, limit int) ([]*models.DatasetSnapshot, error)
	PruneSnapshots(kind string, keep int) (int, error)
}

// PageStorage persists raw page captures.
type PageStorage interface {
	SavePage(page *models.PageCapture) error
	GetPageByURL(url string) (*models.PageCapture, error)
	ListPages(limit int) ([]*models.PageCapture, error)
}

// StorageManager aggregates the storage interfaces.
type StorageManager interface {
	SnapshotStorage() SnapshotStorage
	PageStorage() PageStorage
	Close() error
}
