package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daleel/daleel-backend/internal/config"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	popped      []string
	pushed      []interface{}
	pushKeys    []string
	pushCtxErrs []error
}

func (f *fakeQueue) BLPop(_ context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	if len(f.popped) == 0 {
		return redis.NewStringSliceResult(nil, redis.Nil)
	}
	raw := f.popped[0]
	f.popped = f.popped[1:]
	return redis.NewStringSliceResult([]string{keys[0], raw}, nil)
}

func (f *fakeQueue) LPop(_ context.Context, _ string) *redis.StringCmd {
	if len(f.popped) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	raw := f.popped[0]
	f.popped = f.popped[1:]
	return redis.NewStringResult(raw, nil)
}

func (f *fakeQueue) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.pushKeys = append(f.pushKeys, key)
	f.pushCtxErrs = append(f.pushCtxErrs, ctx.Err())
	f.pushed = append(f.pushed, values...)
	return redis.NewIntResult(int64(len(f.pushed)), nil)
}

// cancellingCounter fails and cancels the worker context, as a shutdown
// arriving mid-increment would.
type cancellingCounter struct {
	cancel context.CancelFunc
}

func (c *cancellingCounter) IncrementDownloads(context.Context, int, int) error {
	c.cancel()
	return errors.New("connection refused")
}

type fakeCounter struct {
	calls map[int]int
	err   error
}

func (f *fakeCounter) IncrementDownloads(_ context.Context, id, n int) error {
	if f.err != nil {
		return f.err
	}
	if f.calls == nil {
		f.calls = map[int]int{}
	}
	f.calls[id] += n
	return nil
}

func TestDownloadPayload_RoundTrip(t *testing.T) {
	raw, err := encodeDownload(42, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	p, err := decodeDownload(raw)
	require.NoError(t, err)
	assert.Equal(t, 42, p.MaterialID)
}

func TestDownloadCounterWorker_Apply(t *testing.T) {
	counter := &fakeCounter{}
	w := NewDownloadCounterWorker(nil, counter, zerolog.Nop())
	ctx := context.Background()

	raw, err := encodeDownload(7, time.Now())
	require.NoError(t, err)

	require.NoError(t, w.apply(ctx, raw))
	require.NoError(t, w.apply(ctx, raw))
	assert.Equal(t, 2, counter.calls[7])

	assert.NoError(t, w.apply(ctx, "garbage"), "malformed events are dropped")
	assert.NoError(t, w.apply(ctx, `{"material_id":0}`), "invalid ids are dropped")
}

func TestDownloadCounterWorker_ApplyErrors(t *testing.T) {
	ctx := context.Background()
	raw, err := encodeDownload(7, time.Now())
	require.NoError(t, err)

	gone := NewDownloadCounterWorker(nil, &fakeCounter{err: repository.ErrNotFound}, zerolog.Nop())
	assert.NoError(t, gone.apply(ctx, raw), "deleted materials are not retried")

	down := errors.New("connection refused")
	flaky := NewDownloadCounterWorker(nil, &fakeCounter{err: down}, zerolog.Nop())
	assert.ErrorIs(t, flaky.apply(ctx, raw), down)
}

func TestDownloadCounterWorker_RequeuesOnShutdown(t *testing.T) {
	raw, err := encodeDownload(7, time.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := &fakeQueue{popped: []string{raw}}
	w := &DownloadCounterWorker{
		rdb:        queue,
		counter:    &cancellingCounter{cancel: cancel},
		retryDelay: time.Minute,
		log:        zerolog.Nop(),
	}

	start := time.Now()
	w.processNext(ctx)

	assert.Less(t, time.Since(start), time.Second, "cancellation cuts the retry wait short")
	require.Len(t, queue.pushed, 1)
	assert.Equal(t, raw, queue.pushed[0])
	assert.Equal(t, config.WorkerKey.MaterialDownloadsQueue, queue.pushKeys[0])
	assert.NoError(t, queue.pushCtxErrs[0], "requeue must not use the cancelled context")
}

func TestDownloadCounterWorker_DrainRequeuesFailedEvent(t *testing.T) {
	raw, err := encodeDownload(7, time.Now())
	require.NoError(t, err)

	queue := &fakeQueue{popped: []string{raw, raw}}
	w := &DownloadCounterWorker{
		rdb:        queue,
		counter:    &fakeCounter{err: errors.New("connection refused")},
		retryDelay: time.Minute,
		log:        zerolog.Nop(),
	}

	w.drain(context.Background())

	require.Len(t, queue.pushed, 1, "drain stops after the first failure")
	assert.Equal(t, raw, queue.pushed[0])
	assert.Len(t, queue.popped, 1)
	assert.Equal(t, []string{config.WorkerKey.MaterialDownloadsQueue}, queue.pushKeys)
}
