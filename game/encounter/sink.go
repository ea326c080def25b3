package encounter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/bossarena/cache"
	"github.com/kasuganosora/bossarena/game/mechanic"
	"go.uber.org/zap"
)

// Encounter-level event types, alongside the mechanic ones.
const (
	EventBossDefeated mechanic.EventType = "boss_defeated"
	EventPlayerDown   mechanic.EventType = "player_down"
)

// recentEvents is how many events are kept per encounter in the cache.
const recentEvents = 100

// Record is a mechanic event stamped with the encounter and tick it
// happened in.
type Record struct {
	EncounterID string `json:"encounter_id"`
	Tick        int64  `json:"tick"`
	mechanic.Event
}

// Sink receives every Record. Emit is called on the simulation goroutine
// and must not block.
type Sink interface {
	Emit(rec Record)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(rec Record)

// Emit calls f(rec).
func (f SinkFunc) Emit(rec Record) { f(rec) }

// LogSink writes records to a zap logger: lifecycle events at Info, the
// rest at Debug.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink; a nil logger discards everything.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Emit logs one record with its encounter, boss and mechanic fields.
func (s *LogSink) Emit(rec Record) {
	fields := []zap.Field{
		zap.String("encounter_id", rec.EncounterID),
		zap.Int64("tick", rec.Tick),
		zap.Int64("boss_id", int64(rec.Boss)),
		zap.String("boss_type", rec.BossType),
		zap.String("mechanic", rec.Mechanic.String()),
		zap.Int("phase", rec.Phase),
	}
	if len(rec.Data) > 0 {
		fields = append(fields, zap.Any("data", rec.Data))
	}
	switch rec.Type {
	case mechanic.EventPhaseEnter, mechanic.EventSplit, mechanic.EventMerge, mechanic.EventSplitFailed,
		mechanic.EventSwept, EventBossDefeated, EventPlayerDown:
		s.logger.Info(string(rec.Type), fields...)
	default:
		s.logger.Debug(string(rec.Type), fields...)
	}
}

// PubSubSink publishes records as JSON on cache.EventsChannel and keeps
// the most recent ones in a per-encounter list. Publishing happens on a
// background goroutine; records that do not fit the queue are dropped.
type PubSubSink struct {
	ps     cache.PubSub
	store  cache.Cache // optional
	queue  chan Record
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPubSubSink starts the publisher. store may be nil.
func NewPubSubSink(ps cache.PubSub, store cache.Cache, buf int, logger *zap.Logger) *PubSubSink {
	if buf <= 0 {
		buf = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PubSubSink{
		ps:     ps,
		store:  store,
		queue:  make(chan Record, buf),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Emit queues rec for publishing; a full queue drops it with a warning.
func (s *PubSubSink) Emit(rec Record) {
	select {
	case s.queue <- rec:
	default:
		s.logger.Warn("event queue full, dropping event",
			zap.String("encounter_id", rec.EncounterID),
			zap.String("type", string(rec.Type)))
	}
}

// Stop publishes whatever is queued and waits for the worker to exit.
func (s *PubSubSink) Stop(_ context.Context) {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
}

func (s *PubSubSink) worker() {
	defer s.wg.Done()
	for {
		select {
		case rec := <-s.queue:
			s.publish(rec)
		case <-s.stopCh:
			for {
				select {
				case rec := <-s.queue:
					s.publish(rec)
				default:
					return
				}
			}
		}
	}
}

func (s *PubSubSink) publish(rec Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("event not encodable", zap.String("type", string(rec.Type)), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.ps.Publish(ctx, cache.EventsChannel, string(raw)); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
	if s.store == nil {
		return
	}
	key := cache.RecentEventsKey(rec.EncounterID)
	if err := s.store.LPush(ctx, key, string(raw)); err != nil {
		s.logger.Warn("event history write failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.LTrim(ctx, key, 0, recentEvents-1); err != nil {
		s.logger.Warn("event history trim failed", zap.String("key", key), zap.Error(err))
	}
}
