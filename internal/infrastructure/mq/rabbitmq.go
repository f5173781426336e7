package mq

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"file-vault-api/config"
)

// RoutingKeyThumbnail routes thumbnail jobs to the generation queue.
const RoutingKeyThumbnail = "thumbnail"

// Enqueue must never block the upload request path, so the input channel is
// buffered and a full buffer is an enqueue failure (thumbnails are
// best-effort).
const bufferSize = 128

var ErrQueueFull = errors.New("thumbnail queue is full")

type (
	InputCh  = chan Job
	RabbitMQ struct {
		cfg   config.MQ
		log   *zap.Logger
		conn  *amqp091.Connection
		pubCh *amqp091.Channel
		in    InputCh
	}
	// Job is the thumbnail pipeline payload: the image record's id and the
	// locator of its source bytes.
	Job struct {
		Id          uuid.UUID `json:"job_id"`
		TS          time.Time `json:"time_stamp"`
		FileUUID    uuid.UUID `json:"file_uuid"`
		Locator     string    `json:"locator"`
		ContentType string    `json:"content_type"`
	}
)

func New(cfg config.MQ, logger *zap.Logger) *RabbitMQ {
	return &RabbitMQ{
		cfg: cfg,
		log: logger,
		in:  make(chan Job, bufferSize),
	}
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "filevault",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSClientConfig: nil,
	}

	var err error
	r.conn, err = amqp091.DialConfig(dsn, amqpCfg)
	if err != nil {
		return err
	}
	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		return err
	}

	r.log.Info("rabbitmq connected successfully")

	return err
}

func (r *RabbitMQ) Init() error {
	var err error
	if err = r.pubCh.ExchangeDeclare(
		r.cfg.Exchange,
		r.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = r.pubCh.Close()
		return err
	}
	q, err := r.pubCh.QueueDeclare(
		r.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	if err = r.pubCh.QueueBind(q.Name, RoutingKeyThumbnail, r.cfg.Exchange, false, nil); err != nil {
		return err
	}

	return nil
}

// Enqueue hands a job to the publisher worker without blocking.
func (r *RabbitMQ) Enqueue(job Job) error {
	select {
	case r.in <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *RabbitMQ) PublisherWorker(ctx context.Context) {
	r.log.Info("starting thumbnail publisher worker")

	defer func() {
		r.log.Info("thumbnail publisher worker gracefully stopped")
	}()

	for {
		select {
		case job := <-r.in:
			if err := r.publish(ctx, job); err != nil {
				// alert
				r.log.Error("mq publish error", zap.Error(err))
			}
		case <-ctx.Done():
			close(r.in)
			r.pubCh.Close()
			return
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, job Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		// alert
		return err
	}

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    job.Id.String(),
		Timestamp:    job.TS,
		Type:         RoutingKeyThumbnail,
		Body:         b,
	}
	if err = r.pubCh.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		RoutingKeyThumbnail,
		true,
		false,
		pub,
	); err != nil {
		return err
	}

	return nil
}

func (r *RabbitMQ) GetConn() *amqp091.Connection { return r.conn }
