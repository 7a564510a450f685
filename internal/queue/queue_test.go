package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"weld-inspection-db/internal/config"
	"weld-inspection-db/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient, *config.Config) {
	t.Helper()
	mr := miniredis.RunT(t)

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg, err := config.Parse([]byte("redis: {}\n"))
	require.NoError(t, err)
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = port

	client, err := NewRedisClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client, cfg
}

func TestEnqueueImportJob(t *testing.T) {
	mr, client, cfg := newTestRedis(t)
	producer := NewProducer(client, cfg)

	job := model.ImportJob{FileID: 7, StoragePath: "imports/a.xlsx", Sheet: "Welds"}
	require.NoError(t, producer.EnqueueImportJob(context.Background(), job))

	items, err := mr.List(cfg.Redis.ImportQueue)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got model.ImportJob
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, job, got)

	pending, err := producer.Pending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestConsumeImportQueue(t *testing.T) {
	mr, client, cfg := newTestRedis(t)
	producer := NewProducer(client, cfg)
	consumer := NewConsumer(client, cfg)
	consumer.pollTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, producer.EnqueueImportJob(ctx, model.ImportJob{FileID: 1}))
	require.NoError(t, producer.EnqueueImportJob(ctx, model.ImportJob{FileID: 2}))

	seen := make(chan int64, 2)
	done := make(chan error, 1)
	go func() {
		done <- consumer.ConsumeImportQueue(ctx, func(ctx context.Context, data []byte) error {
			var job model.ImportJob
			if err := json.Unmarshal(data, &job); err != nil {
				return err
			}
			seen <- job.FileID
			if job.FileID == 2 {
				return fmt.Errorf("rejected")
			}
			return nil
		})
	}()

	assert.Equal(t, int64(1), <-seen, "jobs are consumed in enqueue order")
	assert.Equal(t, int64(2), <-seen)

	require.Eventually(t, func() bool {
		items, _ := mr.List(consumer.DeadLetterQueue())
		return len(items) == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "weld_import_jobs:dlq", consumer.DeadLetterQueue())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

// countingHook counts the commands sent to the server.
type countingHook struct {
	calls int32
}

func (h *countingHook) BeforeProcess(ctx context.Context, cmd redis.Cmder) (context.Context, error) {
	atomic.AddInt32(&h.calls, 1)
	return ctx, nil
}

func (h *countingHook) AfterProcess(ctx context.Context, cmd redis.Cmder) error { return nil }

func (h *countingHook) BeforeProcessPipeline(ctx context.Context, cmds []redis.Cmder) (context.Context, error) {
	return ctx, nil
}

func (h *countingHook) AfterProcessPipeline(ctx context.Context, cmds []redis.Cmder) error {
	return nil
}

func TestConsumeBacksOffOnBrokerErrors(t *testing.T) {
	mr, client, cfg := newTestRedis(t)
	hook := &countingHook{}
	client.Client().AddHook(hook)
	mr.SetError("ERR broker unavailable")

	consumer := NewConsumer(client, cfg)
	consumer.pollTimeout = time.Second
	consumer.retryDelay = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 350*time.Millisecond)
	defer cancel()

	err := consumer.ConsumeImportQueue(ctx, func(ctx context.Context, data []byte) error {
		t.Fatal("handler must not run while the broker fails")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.LessOrEqual(t, atomic.LoadInt32(&hook.calls), int32(10))
}

func TestDeadLetterSurvivesCancelledContext(t *testing.T) {
	mr, client, cfg := newTestRedis(t)
	consumer := NewConsumer(client, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, consumer.DeadLetter(ctx, []byte(`{"file_id":3}`)))

	items, err := mr.List(consumer.DeadLetterQueue())
	require.NoError(t, err)
	assert.Equal(t, []string{`{"file_id":3}`}, items)
}
