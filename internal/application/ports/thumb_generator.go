package ports

import (
	"context"

	"file-vault-api/internal/infrastructure/mq"
)

// ThumbGenerator derives the fixed-width thumbnail set of one image record.
type ThumbGenerator interface {
	Generate(ctx context.Context, job mq.Job) error
}
