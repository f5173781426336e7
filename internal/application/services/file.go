package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"file-vault-api/internal/application/ports"
	"file-vault-api/internal/domain/apperr"
	domain "file-vault-api/internal/domain/file"
	"file-vault-api/internal/domain/user"
	"file-vault-api/internal/infrastructure/mq"
)

const maxNameLen = 100

type FileService struct {
	blob           ports.BlobStore
	fileRepository domain.Repository
	thumbQueue     ports.ThumbQueue
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

func NewFileService(
	blob ports.BlobStore,
	fileRepository domain.Repository,
	thumbQueue ports.ThumbQueue,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.FileService {
	return &FileService{
		blob:           blob,
		fileRepository: fileRepository,
		thumbQueue:     thumbQueue,
		logger:         logger,
		mCounter:       mCounter,
	}
}

// Create validates the input, persists bytes for non-folder kinds and
// inserts the catalog record. The blob write happens first: a storage
// failure leaves no catalog record behind. For images a thumbnail job is
// enqueued after the record is durable; enqueue failure is logged and never
// fails the create.
func (fs *FileService) Create(ctx context.Context, owner user.UUID, in ports.CreateFileInput) (*domain.FileRecord, error) {
	name := sanitizeDisplayName(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if _, ok := domain.ParseKind(string(in.Kind)); !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", apperr.ErrValidation, in.Kind)
	}

	if err := fs.checkParent(ctx, owner, in.Parent); err != nil {
		return nil, err
	}

	rec := &domain.FileRecord{
		OwnerUUID:  owner,
		Name:       name,
		Kind:       in.Kind,
		ParentUUID: in.Parent,
		Public:     in.Public,
	}

	if in.Kind != domain.KindFolder {
		if len(in.Data) == 0 {
			return nil, fmt.Errorf("%w: file content is required", apperr.ErrValidation)
		}
		locator, err := fs.blob.Put(ctx, in.Data, in.ContentType)
		if err != nil {
			return nil, err
		}
		rec.Locator = locator
	}
	if in.Kind == domain.KindImage {
		rec.ThumbState = domain.ThumbPending
	}

	out, err := fs.fileRepository.CreateFile(ctx, rec)
	if err != nil {
		return nil, err
	}

	if out.Kind == domain.KindImage {
		job := mq.Job{
			Id:          uuid.New(),
			TS:          time.Now(),
			FileUUID:    out.UUID,
			Locator:     out.Locator,
			ContentType: in.ContentType,
		}
		if err = fs.thumbQueue.Enqueue(job); err != nil {
			// thumbnails are best-effort; the upload already succeeded
			fs.logger.Error("thumbnail enqueue failed",
				zap.Stringer("file_uuid", out.UUID),
				zap.Error(err),
			)
		} else {
			fs.mCounter.WithLabelValues("thumb_jobs_enqueued_total").Inc()
		}
	}

	fs.mCounter.WithLabelValues("files_created_total").Inc()

	return out, nil
}

func (fs *FileService) checkParent(ctx context.Context, owner user.UUID, parent *uuid.UUID) error {
	if parent == nil {
		return nil
	}

	p, err := fs.fileRepository.FetchByUUID(ctx, *parent)
	if err != nil {
		return err
	}
	// a foreign parent reads the same as a missing one
	if p == nil || !p.IsOwnedBy(owner) {
		return apperr.ErrParentNotFound
	}
	if p.Kind != domain.KindFolder {
		return apperr.ErrNotAFolder
	}

	return nil
}

// Get returns the metadata of a record. Absent records and private records
// of other users are indistinguishable: both are not found.
func (fs *FileService) Get(ctx context.Context, requester user.UUID, id uuid.UUID) (*domain.FileRecord, error) {
	rec, err := fs.fileRepository.FetchByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.ReadableBy(requester) {
		return nil, apperr.ErrNotFound
	}

	return rec, nil
}

// List pages through the owner's records under one parent in creation
// order. An out-of-range page is an empty result, not an error.
func (fs *FileService) List(ctx context.Context, owner user.UUID, parent *uuid.UUID, page int) (domain.FileRecords, error) {
	if page < 1 {
		page = 1
	}

	return fs.fileRepository.FetchFolder(ctx, owner, parent, page)
}

// SetPublic flips the visibility flag. Only the owner may write; a reader
// who is not the owner gets forbidden, everyone else not found.
func (fs *FileService) SetPublic(ctx context.Context, requester user.UUID, id uuid.UUID, public bool) error {
	rec, err := fs.fileRepository.FetchByUUID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil || !rec.ReadableBy(requester) {
		return apperr.ErrNotFound
	}
	if !rec.IsOwnedBy(requester) {
		return apperr.ErrForbidden
	}

	if rec.Public == public {
		// idempotent
		return nil
	}

	return fs.fileRepository.SetPublic(ctx, id, public)
}

// FetchContent returns a record's bytes, or its width-wide thumbnail when
// width is non-zero. A missing blob behind an authorized record is an
// internal inconsistency, never a not found; a missing thumbnail is not
// found for that width only.
func (fs *FileService) FetchContent(ctx context.Context, requester user.UUID, id uuid.UUID, width int) ([]byte, string, error) {
	rec, err := fs.Get(ctx, requester, id)
	if err != nil {
		return nil, "", err
	}
	if rec.Kind == domain.KindFolder {
		return nil, "", apperr.ErrNotFound
	}

	if width == 0 {
		data, err := fs.blob.Get(ctx, rec.Locator)
		if err != nil {
			if errors.Is(err, ports.ErrBlobNotFound) {
				return nil, "", fmt.Errorf("%w: file %s locator %s", apperr.ErrInconsistent, rec.UUID, rec.Locator)
			}
			return nil, "", err
		}
		return data, http.DetectContentType(data), nil
	}

	if !validThumbWidth(width) {
		return nil, "", fmt.Errorf("%w: unsupported width %d", apperr.ErrValidation, width)
	}
	if rec.Kind != domain.KindImage {
		return nil, "", apperr.ErrNotFound
	}

	data, err := fs.blob.Get(ctx, domain.ThumbLocator(rec.Locator, width))
	if err != nil {
		if errors.Is(err, ports.ErrBlobNotFound) {
			// pipeline still pending, or failed: this width is absent
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", err
	}

	return data, http.DetectContentType(data), nil
}

func validThumbWidth(width int) bool {
	for _, w := range domain.ThumbWidths {
		if w == width {
			return true
		}
	}
	return false
}

// sanitizeDisplayName normalizes a user-supplied name to a safe ASCII form.
// The display name never reaches the blob store, but uniform names keep
// listings and logs sane.
func sanitizeDisplayName(original string) string {
	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)

	if s == "." || s == ".." || s == "/" {
		return ""
	}

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	s, _, _ = transform.String(t, s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\x00' || r < 0x20:
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_' || r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	s = strings.Trim(b.String(), "- .")

	for utf8.RuneCountInString(s) > maxNameLen {
		_, size := utf8.DecodeLastRuneInString(s)
		if size <= 0 || size > len(s) {
			break
		}
		s = s[:len(s)-size]
	}

	return s
}

func isMn(r rune) bool { return unicode.Is(unicode.Mn, r) }
