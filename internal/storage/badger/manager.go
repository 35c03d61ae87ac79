package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/common"
	"github.com/ternarybob/sovereign/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	snapshot interfaces.SnapshotStorage
	page     interfaces.PageStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		snapshot: NewSnapshotStorage(db, logger),
		page:     NewPageStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// SnapshotStorage returns the Snapshot storage interface
func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.snapshot
}

// PageStorage returns the Page storage interface
func (m *Manager) PageStorage() interfaces.PageStorage {
	return m.page
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
