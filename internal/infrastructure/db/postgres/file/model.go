package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	FileRecord struct {
		ID        uint64
		UUID      uuid.UUID
		OwnerUUID uuid.UUID

		Name       string
		Kind       string
		ParentUUID *uuid.UUID
		Public     bool
		Locator    *string
		ThumbState string

		CreatedAt time.Time
	}
	FileRecords []*FileRecord
)
