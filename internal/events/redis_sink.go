package events

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisPushTimeout = 2 * time.Second

// RedisSink queues events onto a Redis list for the stats worker.
// Emit never blocks: events are buffered in memory and pushed by Run.
// When the buffer is full the event is dropped and counted.
type RedisSink struct {
	rdb     *redis.Client
	queue   string
	buf     chan Event
	dropped atomic.Int64
	log     zerolog.Logger
}

// NewRedisSink creates a RedisSink pushing onto queue.
func NewRedisSink(rdb *redis.Client, queue string, bufferSize int, log zerolog.Logger) *RedisSink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &RedisSink{
		rdb:   rdb,
		queue: queue,
		buf:   make(chan Event, bufferSize),
		log:   log.With().Str("component", "redis_event_sink").Logger(),
	}
}

// Emit implements Sink.
func (s *RedisSink) Emit(e Event) {
	select {
	case s.buf <- e:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (s *RedisSink) Dropped() int64 {
	return s.dropped.Load()
}

// Run pushes buffered events until ctx is cancelled, then flushes what is left.
// Call in a goroutine.
func (s *RedisSink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case e := <-s.buf:
			s.push(ctx, e)
		}
	}
}

func (s *RedisSink) flush() {
	for {
		select {
		case e := <-s.buf:
			s.push(context.Background(), e)
		default:
			if n := s.dropped.Load(); n > 0 {
				s.log.Warn().Int64("dropped", n).Msg("Events dropped while buffer was full")
			}
			return
		}
	}
}

func (s *RedisSink) push(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal event error")
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, redisPushTimeout)
	defer cancel()

	if err := s.rdb.RPush(pushCtx, s.queue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("event", e.Name()).Msg("RPush event error")
	}
}
