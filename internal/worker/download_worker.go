package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daleel/daleel-backend/internal/config"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DownloadCounter applies counted downloads to the material store.
type DownloadCounter interface {
	IncrementDownloads(ctx context.Context, materialID, n int) error
}

type downloadPayload struct {
	MaterialID int       `json:"material_id"`
	At         time.Time `json:"at"`
}

// DownloadQueue pushes download events onto material_downloads_queue.
type DownloadQueue struct {
	rdb *redis.Client
}

// NewDownloadQueue creates a new DownloadQueue.
func NewDownloadQueue(rdb *redis.Client) *DownloadQueue {
	return &DownloadQueue{rdb: rdb}
}

// Enqueue records one download of materialID.
func (q *DownloadQueue) Enqueue(ctx context.Context, materialID int) error {
	payload, err := encodeDownload(materialID, time.Now())
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.MaterialDownloadsQueue, payload).Err()
}

// Len reports how many downloads are waiting to be counted.
func (q *DownloadQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, config.WorkerKey.MaterialDownloadsQueue).Result()
}

// queueClient is the part of *redis.Client the worker uses.
type queueClient interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LPop(ctx context.Context, key string) *redis.StringCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

const (
	defaultRetryDelay = 5 * time.Second
	requeueTimeout    = 5 * time.Second
)

// DownloadCounterWorker consumes material_downloads_queue and increments
// download counters in PostgreSQL one event at a time.
type DownloadCounterWorker struct {
	rdb        queueClient
	counter    DownloadCounter
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewDownloadCounterWorker creates a new DownloadCounterWorker.
func NewDownloadCounterWorker(rdb *redis.Client, counter DownloadCounter, log zerolog.Logger) *DownloadCounterWorker {
	return &DownloadCounterWorker{
		rdb:        rdb,
		counter:    counter,
		retryDelay: defaultRetryDelay,
		log:        log.With().Str("component", "download_counter_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *DownloadCounterWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *DownloadCounterWorker) processNext(ctx context.Context) {
	queue := config.WorkerKey.MaterialDownloadsQueue

	result, err := w.rdb.BLPop(ctx, time.Second, queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if err := w.apply(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Dur("retry_in", w.retryDelay).Msg("Increment error, event requeued")
		w.requeue(result[1])

		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
}

// requeue puts raw back on the queue. The worker context may already be
// cancelled here, so the push gets its own.
func (w *DownloadCounterWorker) requeue(raw string) {
	ctx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
	defer cancel()

	if err := w.rdb.RPush(ctx, config.WorkerKey.MaterialDownloadsQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).Str("payload", raw).Msg("Download event lost")
	}
}

// apply handles one queue item. Items that can never succeed are logged and
// dropped; only transient failures are returned for retry.
func (w *DownloadCounterWorker) apply(ctx context.Context, raw string) error {
	p, err := decodeDownload(raw)
	if err != nil {
		w.log.Error().Err(err).Str("payload", raw).Msg("Dropping malformed download event")
		return nil
	}

	err = w.counter.IncrementDownloads(ctx, p.MaterialID, 1)
	if errors.Is(err, repository.ErrNotFound) {
		w.log.Debug().Int("material_id", p.MaterialID).Msg("Material gone, download event dropped")
		return nil
	}
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *DownloadCounterWorker) drain(ctx context.Context) {
	queue := config.WorkerKey.MaterialDownloadsQueue
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, queue).Result()
		if err != nil {
			break
		}

		if err := w.apply(ctx, result); err != nil {
			w.log.Error().Err(err).Msg("Drain increment error")
			w.requeue(result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining download events")
	}
}

func encodeDownload(materialID int, at time.Time) (string, error) {
	b, err := json.Marshal(downloadPayload{MaterialID: materialID, At: at.UTC()})
	if err != nil {
		return "", fmt.Errorf("marshal download: %w", err)
	}
	return string(b), nil
}

func decodeDownload(raw string) (downloadPayload, error) {
	var p downloadPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, fmt.Errorf("unmarshal download: %w", err)
	}
	if p.MaterialID <= 0 {
		return p, fmt.Errorf("unmarshal download: bad material id %d", p.MaterialID)
	}
	return p, nil
}
