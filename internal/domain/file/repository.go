package file

import (
	"context"

	"github.com/google/uuid"

	"file-vault-api/internal/domain/user"
)

// PageSize is the fixed page length of folder listings.
const PageSize = 20

type Repository interface {
	CreateFile(ctx context.Context, req *FileRecord) (*FileRecord, error)
	FetchByUUID(ctx context.Context, id uuid.UUID) (*FileRecord, error)
	FetchFolder(ctx context.Context, owner user.UUID, parent *uuid.UUID, page int) (FileRecords, error)
	SetPublic(ctx context.Context, id uuid.UUID, public bool) error
	SetThumbState(ctx context.Context, id uuid.UUID, state ThumbState) error
}
