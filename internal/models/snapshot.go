package models

import "time"

// Snapshot kinds stored in Badger.
const (
	SnapshotKindSpreads = "spreads"
	SnapshotKindRatings = "ratings"
	SnapshotKindMerged  = "merged"
)

// DatasetSnapshot is one persisted capture of scraped data. Exactly one
// of the payload slices is populated, matching Kind.
type DatasetSnapshot struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind" badgerhold:"index"`
	CapturedAt time.Time `json:"captured_at"`
	RowCount   int       `json:"row_count"`

	Spreads []SpreadRecord   `json:"spreads,omitempty"`
	Ratings []CountryRatings `json:"ratings,omitempty"`
	Merged  []MergedRecord   `json:"merged,omitempty"`
}

// PageCapture is the raw page behind a snapshot, converted to Markdown
// for replay and debugging.
type PageCapture struct {
	ID              string    `json:"id"`
	URL             string    `json:"url" badgerhold:"index"`
	Title           string    `json:"title"`
	ContentMarkdown string    `json:"content_markdown"`
	FetchedAt       time.Time `json:"fetched_at"`
}
