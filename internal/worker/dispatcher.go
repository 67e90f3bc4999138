package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ridebooking/internal/events"
	"ridebooking/internal/logging"
	"ridebooking/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	DefaultQueueKey      = "ridebooking:events"
	DefaultDeadLetterKey = "ridebooking:events:dead"

	// DefaultRedisMaxLen caps both redis lists; the oldest entries are trimmed first.
	DefaultRedisMaxLen = 10000
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	// ErrNoConsumer means the event could not reach redis and no local sink would drain memory.
	ErrNoConsumer = errors.New("no consumer for notification queue")
)

// Sink delivers an event to one external channel. Sinks ignore event types they do not handle.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event *events.Event) error
}

// deadLetter is what lands in the dead-letter list once a sink gives up.
type deadLetter struct {
	Sink     string        `json:"sink"`
	Error    string        `json:"error"`
	Event    *events.Event `json:"event"`
	FailedAt time.Time     `json:"failed_at"`
}

// Dispatcher fans booking and tracking events out to notification sinks.
// Events go through redis when available and an in-memory queue otherwise.
type Dispatcher struct {
	sinks         []Sink
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan events.Event
	redisQueueKey string
	deadLetterKey string
	redisMaxLen   int64
	pollInterval  time.Duration
	logger        zerolog.Logger
}

func NewDispatcher(sinks []Sink, redisClient *redis.Client, retry RetryPolicy, queueSize int, logger *zerolog.Logger) *Dispatcher {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if queueSize <= 0 {
		queueSize = 128
	}

	return &Dispatcher{
		sinks:         sinks,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan events.Event, queueSize),
		redisQueueKey: DefaultQueueKey,
		deadLetterKey: DefaultDeadLetterKey,
		redisMaxLen:   DefaultRedisMaxLen,
		pollInterval:  2 * time.Second,
		logger:        logging.Component(logger, "dispatcher"),
	}
}

// HasSinks reports whether anything is configured to receive events.
func (d *Dispatcher) HasSinks() bool {
	return len(d.sinks) > 0
}

// Handle adapts the dispatcher to an events.EventHandler.
func (d *Dispatcher) Handle(event *events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return d.Enqueue(ctx, event)
}

// Enqueue schedules the event via redis or the in-memory queue.
// The memory queue is used only when this process has sinks to drain it.
func (d *Dispatcher) Enqueue(ctx context.Context, event *events.Event) error {
	if event == nil || event.Type == "" {
		return errors.New("event type is required")
	}

	var redisErr error
	if d.redis != nil {
		redisErr = d.pushRedis(ctx, d.redisQueueKey, event)
		if redisErr == nil {
			return nil
		}
	}

	if !d.HasSinks() {
		if redisErr != nil {
			return fmt.Errorf("%w: %w", ErrNoConsumer, redisErr)
		}
		return ErrNoConsumer
	}
	if redisErr != nil {
		d.logger.Warn().Err(redisErr).Str("event_id", event.ID).Msg("redis push failed, fallback to memory queue")
	}

	select {
	case d.queue <- *event:
		return nil
	default:
		d.logger.Error().Str("event_id", event.ID).Str("type", event.Type).Msg("in-memory queue full, event dropped")
		return ErrQueueFull
	}
}

// Run consumes events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info().Int("sinks", len(d.sinks)).Msg("dispatcher started")
	defer d.logger.Info().Msg("dispatcher stopped")

	for {
		select {
		case <-ctx.Done():
			if n := len(d.queue); n > 0 {
				d.logger.Warn().Int("pending", n).Msg("undelivered events left in memory queue")
			}
			return
		default:
		}

		if ev, ok := d.tryLocalQueue(); ok {
			d.process(ctx, &ev)
			continue
		}

		if d.redis != nil {
			if ev, ok := d.tryRedis(ctx); ok {
				d.process(ctx, &ev)
			}
			continue
		}

		select {
		case <-ctx.Done():
		case ev := <-d.queue:
			d.process(ctx, &ev)
		}
	}
}

func (d *Dispatcher) tryLocalQueue() (events.Event, bool) {
	select {
	case ev := <-d.queue:
		return ev, true
	default:
		return events.Event{}, false
	}
}

func (d *Dispatcher) tryRedis(ctx context.Context) (events.Event, bool) {
	res, err := d.redis.BLPop(ctx, time.Second, d.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return events.Event{}, false
		}
		d.logger.Error().Err(err).Msg("redis BLPOP error")
		sleepCtx(ctx, d.pollInterval)
		return events.Event{}, false
	}
	if len(res) != 2 {
		return events.Event{}, false
	}

	var ev events.Event
	if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
		d.logger.Error().Err(err).Msg("decode redis event")
		return events.Event{}, false
	}
	return ev, true
}

func (d *Dispatcher) process(ctx context.Context, event *events.Event) {
	for _, sink := range d.sinks {
		d.deliver(ctx, sink, event)
	}
}

// deliver retries one sink with exponential backoff, then dead-letters the event.
func (d *Dispatcher) deliver(ctx context.Context, sink Sink, event *events.Event) {
	for attempt := 1; ; attempt++ {
		event.Attempts = attempt
		err := sink.Deliver(ctx, event)
		metrics.IncNotification(sink.Name(), err)
		if err == nil {
			return
		}

		log := d.logger.Warn().Err(err).Str("sink", sink.Name()).Str("event_id", event.ID).Int("attempt", attempt)
		if attempt >= d.retryPolicy.MaxRetries {
			log.Msg("delivery failed, giving up")
			d.pushDeadLetter(ctx, sink.Name(), event, err)
			return
		}
		log.Msg("delivery failed, retrying")

		if !sleepCtx(ctx, d.retryPolicy.NextDelay(attempt)) {
			return
		}
	}
}

// pushRedis appends to the list and trims it to redisMaxLen in one transaction.
func (d *Dispatcher) pushRedis(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = d.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -d.redisMaxLen, -1)
		return nil
	})
	return err
}

func (d *Dispatcher) pushDeadLetter(ctx context.Context, sink string, event *events.Event, cause error) {
	if d.redis == nil {
		return
	}
	entry := deadLetter{Sink: sink, Error: cause.Error(), Event: event, FailedAt: time.Now().UTC()}
	if err := d.pushRedis(ctx, d.deadLetterKey, entry); err != nil {
		d.logger.Error().Err(err).Str("event_id", event.ID).Msg("dead-letter push")
	}
}

// sleepCtx waits for d or ctx cancellation; false means ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
