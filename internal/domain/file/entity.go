package file

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"file-vault-api/internal/domain/user"
)

type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindFolder, KindFile, KindImage:
		return Kind(s), true
	}
	return "", false
}

// ThumbState tracks the asynchronous thumbnail pipeline per image record.
// Non-image records keep the empty state forever.
type ThumbState string

const (
	ThumbNone       ThumbState = ""
	ThumbPending    ThumbState = "pending"
	ThumbGenerating ThumbState = "generating"
	ThumbDone       ThumbState = "done"
	ThumbFailed     ThumbState = "failed"
)

// ThumbWidths are the fixed target widths of a thumbnail set.
var ThumbWidths = []int{500, 250, 100}

// ThumbLocator derives the blob locator of a thumbnail from its parent's
// locator. Deterministic so retrieval needs no extra catalog lookup.
func ThumbLocator(locator string, width int) string {
	return fmt.Sprintf("%s.w%d", locator, width)
}

type (
	FileRecord struct {
		UUID      uuid.UUID
		OwnerUUID user.UUID

		Name string
		Kind Kind
		// ParentUUID is nil for records living under the root.
		ParentUUID *uuid.UUID
		Public     bool
		// Locator addresses the raw bytes in the blob store. Empty for
		// folders; set exactly once at creation otherwise.
		Locator    string
		ThumbState ThumbState

		CreatedAt time.Time
	}
	FileRecords []*FileRecord
)

// IsOwnedBy reports whether u owns the record.
func (fr *FileRecord) IsOwnedBy(u user.UUID) bool { return fr.OwnerUUID == u }

// ReadableBy implements the visibility policy: the owner always reads,
// everyone else only if the record is public.
func (fr *FileRecord) ReadableBy(u user.UUID) bool { return fr.Public || fr.IsOwnedBy(u) }
