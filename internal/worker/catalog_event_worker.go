package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-catalog/internal/config"
	"github.com/stemsi/course-catalog/internal/events"
)

// CatalogEventWorker consumes catalog_events_queue and maintains per-outcome
// counters in the catalog:stats hash.
type CatalogEventWorker struct {
	rdb     *redis.Client
	queue   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewCatalogEventWorker creates a new CatalogEventWorker.
func NewCatalogEventWorker(rdb *redis.Client, log zerolog.Logger) *CatalogEventWorker {
	return &CatalogEventWorker{
		rdb:     rdb,
		queue:   config.WorkerKey.CatalogEventsQueue,
		timeout: time.Second,
		log:     log.With().Str("component", "catalog_event_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *CatalogEventWorker) Start(ctx context.Context) {
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

func (w *CatalogEventWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or the timeout elapses.
	result, err := w.rdb.BLPop(ctx, w.timeout, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(w.timeout)
		}
		return
	}

	if len(result) < 2 {
		return
	}

	if err := w.record(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Msg("Record event error")
	}
}

// record decodes one queued event and bumps its counter.
func (w *CatalogEventWorker) record(ctx context.Context, raw string) error {
	var e events.Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return err
	}
	if e.Operation == "" || e.Outcome == "" {
		return errors.New("event missing operation or outcome")
	}

	field := config.CacheKey.CatalogStatsField(string(e.Operation), string(e.Outcome))
	return w.rdb.HIncrBy(ctx, config.CacheKey.CatalogStatsKey(), field, 1).Err()
}

// drain processes all remaining items in the queue before shutdown.
func (w *CatalogEventWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, w.queue).Result()
		if err != nil {
			break
		}
		if err := w.record(ctx, raw); err != nil {
			w.log.Error().Err(err).Msg("Drain record error")
			continue
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
