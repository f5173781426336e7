package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-vault-api/internal/application/ports"
	domain "file-vault-api/internal/domain/file"
	"file-vault-api/internal/infrastructure/mq"
)

const retryBackoff = 200 * time.Millisecond

// ThumbService derives the fixed-width variants of one image record. A
// decode failure is terminal; a storage failure on write is retried up to
// the configured bound before the record moves to failed. Either way the
// outcome is never surfaced to the uploader.
type ThumbService struct {
	blob           ports.BlobStore
	fileRepository domain.Repository
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
	putRetries     int
}

func NewThumbService(
	blob ports.BlobStore,
	fileRepository domain.Repository,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
	putRetries int,
) ports.ThumbGenerator {
	if putRetries < 1 {
		putRetries = 1
	}
	return &ThumbService{
		blob:           blob,
		fileRepository: fileRepository,
		logger:         logger,
		mCounter:       mCounter,
		putRetries:     putRetries,
	}
}

func (ts *ThumbService) Generate(ctx context.Context, job mq.Job) error {
	ts.setState(ctx, job, domain.ThumbGenerating)

	src, err := ts.getWithRetry(ctx, job.Locator)
	if err != nil {
		ts.fail(ctx, job, err)
		return err
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		// corrupt or unsupported image: terminal, no retry
		ts.fail(ctx, job, err)
		return nil
	}

	for _, width := range domain.ThumbWidths {
		data, contentType, err := encodeResized(img, format, width)
		if err != nil {
			ts.fail(ctx, job, err)
			return err
		}

		locator := domain.ThumbLocator(job.Locator, width)
		if err = ts.putWithRetry(ctx, locator, data, contentType); err != nil {
			ts.fail(ctx, job, err)
			return err
		}
	}

	ts.setState(ctx, job, domain.ThumbDone)
	ts.mCounter.WithLabelValues("thumb_sets_generated_total").Inc()

	return nil
}

// encodeResized scales the image to the target width preserving aspect
// ratio and re-encodes it. PNG and GIF sources stay lossless, everything
// else becomes JPEG.
func encodeResized(img image.Image, format string, width int) ([]byte, string, error) {
	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case "png", "gif":
		if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

func (ts *ThumbService) getWithRetry(ctx context.Context, locator string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= ts.putRetries; attempt++ {
		data, err := ts.blob.Get(ctx, locator)
		if err == nil {
			return data, nil
		}
		if errors.Is(err, ports.ErrBlobNotFound) {
			// the source blob will not appear on its own
			return nil, err
		}
		lastErr = err
		time.Sleep(retryBackoff * time.Duration(attempt))
	}
	return nil, lastErr
}

func (ts *ThumbService) putWithRetry(ctx context.Context, locator string, data []byte, contentType string) error {
	var lastErr error
	for attempt := 1; attempt <= ts.putRetries; attempt++ {
		if err := ts.blob.PutAt(ctx, locator, data, contentType); err != nil {
			lastErr = err
			time.Sleep(retryBackoff * time.Duration(attempt))
			continue
		}
		return nil
	}
	return lastErr
}

func (ts *ThumbService) fail(ctx context.Context, job mq.Job, cause error) {
	ts.logger.Error("thumbnail generation failed",
		zap.Stringer("file_uuid", job.FileUUID),
		zap.Error(cause),
	)
	ts.mCounter.WithLabelValues("thumb_sets_failed_total").Inc()
	ts.setState(ctx, job, domain.ThumbFailed)
}

func (ts *ThumbService) setState(ctx context.Context, job mq.Job, state domain.ThumbState) {
	if err := ts.fileRepository.SetThumbState(ctx, job.FileUUID, state); err != nil {
		ts.logger.Error("thumb state update failed",
			zap.Stringer("file_uuid", job.FileUUID),
			zap.String("state", string(state)),
			zap.Error(err),
		)
	}
}
