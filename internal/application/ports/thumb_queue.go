package ports

import (
	"context"

	"github.com/rabbitmq/amqp091-go"

	"file-vault-api/internal/infrastructure/mq"
)

// ThumbQueue accepts thumbnail jobs on the request path and publishes them
// to the durable queue from a background worker. Enqueue never blocks.
type ThumbQueue interface {
	Connect(ctx context.Context, dsn string) error
	Init() error
	PublisherWorker(ctx context.Context)
	Enqueue(job mq.Job) error
	GetConn() *amqp091.Connection
}
