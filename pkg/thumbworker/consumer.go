package thumbworker

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"file-vault-api/config"
	"file-vault-api/internal/application/ports"
	"file-vault-api/internal/infrastructure/mq"
)

// one unacked delivery per consumer channel; the pool below provides the
// actual parallelism
const preFetchCount = 1

// Consumer drains the durable thumbnail queue into a fixed worker pool.
// Deliveries are fanned out by file id, so at most one worker ever
// processes jobs of a given file.
type Consumer struct {
	cfg        config.MQ
	log        *zap.Logger
	generator  ports.ThumbGenerator
	workers    int
	conn       *amqp091.Connection
	chConsume  *amqp091.Channel
	chDelivery <-chan amqp091.Delivery
}

func New(cfg config.MQ, logger *zap.Logger, conn *amqp091.Connection, generator ports.ThumbGenerator, workers int) *Consumer {
	if workers < 1 {
		workers = 1
	}
	return &Consumer{
		cfg:       cfg,
		log:       logger,
		generator: generator,
		workers:   workers,
		conn:      conn,
	}
}

func (c *Consumer) Connect(dsn string) error {
	var err error
	c.conn, err = amqp091.Dial(dsn)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	c.chConsume, err = c.conn.Channel()
	if err != nil {
		_ = c.conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

func (c *Consumer) Init() error {
	var err error
	if err = c.chConsume.ExchangeDeclare(
		c.cfg.Exchange,
		c.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err = c.chConsume.QueueDeclare(
		c.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err = c.chConsume.QueueBind(
		c.cfg.QueueName,
		mq.RoutingKeyThumbnail,
		c.cfg.Exchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue bind %s: %w", mq.RoutingKeyThumbnail, err)
	}

	if err = c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	var cerr error
	c.chDelivery, cerr = c.chConsume.Consume(
		c.cfg.QueueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if cerr != nil {
		return fmt.Errorf("consume: %w", cerr)
	}

	return nil
}

// task pairs a decoded job with its delivery so the worker that runs it
// can settle the message afterwards.
type task struct {
	job mq.Job
	msg amqp091.Delivery
}

// DeliveryWorker runs the fan-out loop and the worker pool until the
// context is cancelled or the delivery channel closes. A message is acked
// only after its job completes; a job the consumer never settled stays
// unacked and the broker redelivers it.
func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting thumbnail delivery worker", zap.Int("pool_size", c.workers))

	defer func() {
		c.log.Info("thumbnail delivery worker gracefully stopped")
	}()

	lanes := make([]chan task, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan task)
		wg.Add(1)
		go func(tasks <-chan task) {
			defer wg.Done()
			for tk := range tasks {
				if err := c.generator.Generate(ctx, tk.job); err != nil {
					// the generator already spent its retry bound;
					// requeueing would loop the same failure
					c.log.Error("thumbnail job error",
						zap.Stringer("file_uuid", tk.job.FileUUID),
						zap.Error(err),
					)
					_ = tk.msg.Nack(false, false)
					continue
				}
				_ = tk.msg.Ack(false)
			}
		}(lanes[i])
	}

	for {
		select {
		case msg, ok := <-c.chDelivery:
			if !ok {
				c.log.Warn("mq delivery channel closed")
				c.stop(lanes, &wg)
				return
			}
			job, err := c.delivery(msg)
			if err != nil {
				c.log.Error("mq read message error", zap.Error(err))
				continue
			}
			select {
			case lanes[c.lane(job)] <- task{job: job, msg: msg}:
			case <-ctx.Done():
			}
		case <-ctx.Done():
			c.stop(lanes, &wg)
			return
		}
	}
}

func (c *Consumer) stop(lanes []chan task, wg *sync.WaitGroup) {
	for _, lane := range lanes {
		close(lane)
	}
	wg.Wait()
	if c.chConsume != nil {
		c.chConsume.Close()
	}
}

// delivery decodes one message. Malformed payloads are dropped without
// requeue so a poisoned job cannot loop forever. Well-formed messages stay
// unacked here; the worker settles them once the job is done.
func (c *Consumer) delivery(msg amqp091.Delivery) (mq.Job, error) {
	var job mq.Job
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		_ = msg.Nack(false, false)
		return mq.Job{}, fmt.Errorf("unmarshal job: %w", err)
	}

	return job, nil
}

func (c *Consumer) lane(job mq.Job) int {
	h := fnv.New32a()
	_, _ = h.Write(job.FileUUID[:])
	return int(h.Sum32() % uint32(c.workers))
}
