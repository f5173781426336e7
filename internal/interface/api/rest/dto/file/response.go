package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	FileRecord struct {
		UUID       uuid.UUID  `json:"uuid"`
		Name       string     `json:"name"`
		Kind       string     `json:"kind"`
		ParentUUID *uuid.UUID `json:"parent_uuid,omitempty"`
		Public     bool       `json:"public"`
		ThumbState string     `json:"thumb_state,omitempty"`
		CreatedAt  time.Time  `json:"created_at"`
	}
	FileRecords  []FileRecord
	ResponseData struct {
		Data FileRecords `json:"data"`
	}
)
