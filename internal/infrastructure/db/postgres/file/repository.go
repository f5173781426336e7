package file

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"file-vault-api/internal/domain/file"
	"file-vault-api/internal/domain/user"
	"file-vault-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) file.Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateFile(ctx context.Context, req *file.FileRecord) (*file.FileRecord, error) {
	fr := new(FileRecord)

	var locator *string
	if req.Locator != "" {
		locator = &req.Locator
	}

	err := r.db.QueryRow(
		ctx,
		InsertFile,
		req.OwnerUUID, req.Name, string(req.Kind), req.ParentUUID, req.Public, locator, string(req.ThumbState),
	).Scan(
		&fr.ID,
		&fr.UUID,
		&fr.OwnerUUID,

		&fr.Name,
		&fr.Kind,
		&fr.ParentUUID,
		&fr.Public,
		&fr.Locator,
		&fr.ThumbState,

		&fr.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}

	return fromDBModel(fr), nil
}

func (r *Repository) FetchByUUID(ctx context.Context, id uuid.UUID) (*file.FileRecord, error) {
	fr := new(FileRecord)
	err := r.db.QueryRow(ctx, SelectFileByUUID, id).Scan(
		&fr.ID,
		&fr.UUID,
		&fr.OwnerUUID,

		&fr.Name,
		&fr.Kind,
		&fr.ParentUUID,
		&fr.Public,
		&fr.Locator,
		&fr.ThumbState,

		&fr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch file by uuid: %w", err)
	}

	return fromDBModel(fr), nil
}

func (r *Repository) FetchFolder(ctx context.Context, owner user.UUID, parent *uuid.UUID, page int) (file.FileRecords, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if parent == nil {
		rows, err = r.db.Query(ctx, SelectRootChildren, owner, page)
	} else {
		rows, err = r.db.Query(ctx, SelectFolderChildren, owner, *parent, page)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch folder: %w", err)
	}
	defer rows.Close()

	var frs FileRecords
	for rows.Next() {
		fr := new(FileRecord)

		if err = rows.Scan(
			&fr.ID,
			&fr.UUID,
			&fr.OwnerUUID,

			&fr.Name,
			&fr.Kind,
			&fr.ParentUUID,
			&fr.Public,
			&fr.Locator,
			&fr.ThumbState,

			&fr.CreatedAt,
		); err != nil {
			return nil, err
		}

		frs = append(frs, fr)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&frs), nil
}

func (r *Repository) SetPublic(ctx context.Context, id uuid.UUID, public bool) error {
	if _, err := r.db.Exec(ctx, UpdateFilePublic, id, public); err != nil {
		return fmt.Errorf("update public flag: %w", err)
	}
	return nil
}

func (r *Repository) SetThumbState(ctx context.Context, id uuid.UUID, state file.ThumbState) error {
	if _, err := r.db.Exec(ctx, UpdateFileThumbState, id, string(state)); err != nil {
		return fmt.Errorf("update thumb state: %w", err)
	}
	return nil
}
