package common

import (
	"github.com/google/uuid"
)

// NewSnapshotID generates a unique snapshot ID with the "snap_" prefix
// Format: snap_<uuid>
func NewSnapshotID() string {
	return "snap_" + uuid.New().String()
}

// NewPageID generates a unique page capture ID with the "page_" prefix
func NewPageID() string {
	return "page_" + uuid.New().String()
}
