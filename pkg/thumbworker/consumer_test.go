package thumbworker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-vault-api/config"
	"file-vault-api/internal/infrastructure/mq"
)

type FakeGenerator struct {
	mu          sync.Mutex
	jobs        []mq.Job
	generateErr error
	onGenerate  func(mq.Job)
}

func (f *FakeGenerator) Generate(ctx context.Context, job mq.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onGenerate != nil {
		f.onGenerate(job)
	}
	if f.generateErr != nil {
		return f.generateErr
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *FakeGenerator) Jobs() []mq.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mq.Job, len(f.jobs))
	copy(out, f.jobs)
	return out
}

type FakeAcknowledger struct {
	mu      sync.Mutex
	acks    []uint64
	nacks   []uint64
	requeue []bool
}

func (f *FakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, tag)
	return nil
}

func (f *FakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacks = append(f.nacks, tag)
	f.requeue = append(f.requeue, requeue)
	return nil
}

func (f *FakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func (f *FakeAcknowledger) AckCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.acks)
}

func (f *FakeAcknowledger) NackCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nacks)
}

func (f *FakeAcknowledger) Requeues() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.requeue))
	copy(out, f.requeue)
	return out
}

func marshalJob(t *testing.T, job mq.Job) []byte {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return body
}

// startWorker runs DeliveryWorker against an in-test delivery channel and
// returns a done channel plus the cancel func.
func startWorker(t *testing.T, c *Consumer, ch chan amqp091.Delivery) (chan struct{}, context.CancelFunc) {
	t.Helper()

	c.chDelivery = ch
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.DeliveryWorker(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("delivery worker did not stop")
		}
	})

	return done, cancel
}

func TestConnect_InvalidDSN(t *testing.T) {
	c := New(config.MQ{}, zap.NewNop(), nil, &FakeGenerator{}, 4)

	err := c.Connect("amqp://bad:://dsn")
	require.Error(t, err)
	require.Nil(t, c.chConsume)
	require.Nil(t, c.conn)
}

func Test_delivery(t *testing.T) {
	c := New(config.MQ{}, zap.NewNop(), nil, &FakeGenerator{}, 4)

	want := mq.Job{
		Id:       uuid.New(),
		TS:       time.Now().UTC().Truncate(time.Second),
		FileUUID: uuid.New(),
		Locator:  "blobs/2026/08/29/abc",
	}

	ack := &FakeAcknowledger{}
	job, err := c.delivery(amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: marshalJob(t, want)})
	require.NoError(t, err)
	assert.Equal(t, want.FileUUID, job.FileUUID)
	assert.Equal(t, want.Locator, job.Locator)

	// decoding alone settles nothing; the worker acks once the job is done
	assert.Zero(t, ack.AckCount())
	assert.Zero(t, ack.NackCount())
}

func Test_delivery_MalformedBody(t *testing.T) {
	c := New(config.MQ{}, zap.NewNop(), nil, &FakeGenerator{}, 4)

	ack := &FakeAcknowledger{}
	_, err := c.delivery(amqp091.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("{not json")})
	require.Error(t, err)

	// poison messages are dropped, never requeued
	assert.Equal(t, 1, ack.NackCount())
	assert.Equal(t, []bool{false}, ack.Requeues())
	assert.Zero(t, ack.AckCount())
}

func TestDeliveryWorkerAcksAfterGenerate(t *testing.T) {
	ack := &FakeAcknowledger{}
	var ackedBeforeGenerate bool
	gen := &FakeGenerator{
		onGenerate: func(mq.Job) {
			ackedBeforeGenerate = ack.AckCount() > 0
		},
	}
	c := New(config.MQ{}, zap.NewNop(), nil, gen, 2)

	ch := make(chan amqp091.Delivery, 1)
	startWorker(t, c, ch)

	job := mq.Job{Id: uuid.New(), FileUUID: uuid.New(), Locator: "blobs/x"}
	ch <- amqp091.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: marshalJob(t, job)}

	require.Eventually(t, func() bool { return ack.AckCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, ackedBeforeGenerate, "message must stay unacked until the job has run")
	require.Len(t, gen.Jobs(), 1)
	assert.Equal(t, job.FileUUID, gen.Jobs()[0].FileUUID)
	assert.Zero(t, ack.NackCount())
}

func TestDeliveryWorkerNacksFailedJob(t *testing.T) {
	ack := &FakeAcknowledger{}
	gen := &FakeGenerator{generateErr: errors.New("blob store unavailable")}
	c := New(config.MQ{}, zap.NewNop(), nil, gen, 2)

	ch := make(chan amqp091.Delivery, 1)
	startWorker(t, c, ch)

	job := mq.Job{Id: uuid.New(), FileUUID: uuid.New(), Locator: "blobs/x"}
	ch <- amqp091.Delivery{Acknowledger: ack, DeliveryTag: 8, Body: marshalJob(t, job)}

	// retry bound already spent inside the generator, so no requeue
	require.Eventually(t, func() bool { return ack.NackCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []bool{false}, ack.Requeues())
	assert.Zero(t, ack.AckCount())
}

func TestDeliveryWorkerSkipsMalformedDelivery(t *testing.T) {
	badAck := &FakeAcknowledger{}
	goodAck := &FakeAcknowledger{}
	gen := &FakeGenerator{}
	c := New(config.MQ{}, zap.NewNop(), nil, gen, 2)

	ch := make(chan amqp091.Delivery, 2)
	startWorker(t, c, ch)

	ch <- amqp091.Delivery{Acknowledger: badAck, DeliveryTag: 9, Body: []byte("{not json")}
	job := mq.Job{Id: uuid.New(), FileUUID: uuid.New(), Locator: "blobs/x"}
	ch <- amqp091.Delivery{Acknowledger: goodAck, DeliveryTag: 10, Body: marshalJob(t, job)}

	require.Eventually(t, func() bool { return goodAck.AckCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, badAck.NackCount())
	require.Len(t, gen.Jobs(), 1, "malformed delivery never reaches the generator")
}

func TestDeliveryWorkerStopsOnClosedChannel(t *testing.T) {
	c := New(config.MQ{}, zap.NewNop(), nil, &FakeGenerator{}, 2)

	ch := make(chan amqp091.Delivery)
	done, _ := startWorker(t, c, ch)

	close(ch)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker kept spinning after the delivery channel closed")
	}
}

func Test_lane(t *testing.T) {
	c := New(config.MQ{}, zap.NewNop(), nil, &FakeGenerator{}, 4)

	// same file always lands on the same lane
	job := mq.Job{FileUUID: uuid.New()}
	first := c.lane(job)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, c.lane(job))
	}

	// every lane stays within the pool
	for i := 0; i < 100; i++ {
		lane := c.lane(mq.Job{FileUUID: uuid.New()})
		require.GreaterOrEqual(t, lane, 0)
		require.Less(t, lane, 4)
	}
}

func TestNew_MinimumOneWorker(t *testing.T) {
	c := New(config.MQ{}, zap.NewNop(), nil, &FakeGenerator{}, 0)
	assert.Equal(t, 1, c.workers)

	// a single lane still hashes in range
	assert.Equal(t, 0, c.lane(mq.Job{FileUUID: uuid.New()}))
}
