package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	cfg "file-vault-api/config"
	"file-vault-api/internal/application/ports"
	"file-vault-api/internal/domain/apperr"
)

// Client is the blob store: raw bytes addressed by generated locators.
// Locator layout is "blobs/YYYY/MM/DD/<uuid>" so keys never collide and
// never contain user-supplied names.
type Client struct {
	logger    *zap.Logger
	s3        *awss3.Client
	bucket    string
	opTimeout time.Duration
}

func New(ctx context.Context, logger *zap.Logger, c cfg.S3) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKeyID,
			c.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if c.Endpoint != "" {
			// MinIO and friends
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("s3 client initialized", zap.String("bucket", c.BucketUploads))

	return &Client{
		logger:    logger,
		s3:        client,
		bucket:    c.BucketUploads,
		opTimeout: c.OpTimeout,
	}, nil
}

func newLocator() string {
	d := time.Now().UTC()
	return fmt.Sprintf("blobs/%04d/%02d/%02d/%s", d.Year(), int(d.Month()), d.Day(), uuid.New())
}

func (c *Client) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	locator := newLocator()
	if err := c.PutAt(ctx, locator, data, contentType); err != nil {
		return "", err
	}
	return locator, nil
}

func (c *Client) PutAt(ctx context.Context, locator string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	_, err := c.s3.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(locator),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %w", apperr.ErrStorage, locator, err)
	}

	return nil
}

func (c *Client) Get(ctx context.Context, locator string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	out, err := c.s3.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ports.ErrBlobNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %w", apperr.ErrStorage, locator, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", apperr.ErrStorage, locator, err)
	}

	return data, nil
}
