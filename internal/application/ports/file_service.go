package ports

import (
	"context"

	"github.com/google/uuid"

	"file-vault-api/internal/domain/file"
	"file-vault-api/internal/domain/user"
)

type CreateFileInput struct {
	Name        string
	Kind        file.Kind
	Parent      *uuid.UUID
	Public      bool
	Data        []byte
	ContentType string
}

type FileService interface {
	Create(ctx context.Context, owner user.UUID, in CreateFileInput) (*file.FileRecord, error)
	Get(ctx context.Context, requester user.UUID, id uuid.UUID) (*file.FileRecord, error)
	List(ctx context.Context, owner user.UUID, parent *uuid.UUID, page int) (file.FileRecords, error)
	SetPublic(ctx context.Context, requester user.UUID, id uuid.UUID, public bool) error
	// FetchContent returns the raw bytes and content type of a record, or
	// of its width-wide thumbnail when width is non-zero.
	FetchContent(ctx context.Context, requester user.UUID, id uuid.UUID, width int) ([]byte, string, error)
}
