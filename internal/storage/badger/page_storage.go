package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/interfaces"
	"github.com/ternarybob/sovereign/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PageStorage implements the PageStorage interface for Badger
type PageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPageStorage creates a new PageStorage instance
func NewPageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PageStorage {
	return &PageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PageStorage) SavePage(page *models.PageCapture) error {
	if page.ID == "" {
		return fmt.Errorf("page ID is required")
	}
	if page.URL == "" {
		return fmt.Errorf("page URL is required")
	}

	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now()
	}

	if err := s.db.Store().Upsert(page.ID, page); err != nil {
		return fmt.Errorf("failed to save page capture: %w", err)
	}
	return nil
}

// GetPageByURL returns the most recent capture of a URL.
func (s *PageStorage) GetPageByURL(url string) (*models.PageCapture, error) {
	var pages []models.PageCapture
	err := s.db.Store().Find(&pages, badgerhold.Where("URL").Eq(url).SortBy("FetchedAt").Reverse().Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to find page capture: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("page capture not found for url: %s", url)
	}
	return &pages[0], nil
}

func (s *PageStorage) ListPages(limit int) ([]*models.PageCapture, error) {
	var pages []models.PageCapture
	query := &badgerhold.Query{}
	query = query.SortBy("FetchedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&pages, query); err != nil {
		return nil, fmt.Errorf("failed to list page captures: %w", err)
	}

	out := make([]*models.PageCapture, len(pages))
	for i := range pages {
		out[i] = &pages[i]
	}
	return out, nil
}
