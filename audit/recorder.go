package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/bossarena/game/encounter"
	"github.com/kasuganosora/bossarena/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	queueSize     = 1024
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Recorder journals encounter events asynchronously in batches. It is an
// encounter.Sink.
type Recorder struct {
	db     *gorm.DB
	ch     chan *model.EncounterEvent
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a Recorder and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		db:     db,
		ch:     make(chan *model.EncounterEvent, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	r.wg.Add(1)
	go r.worker()
	return r
}

// Emit enqueues an event for async DB write. It never blocks the
// simulation; when the queue is full the event is dropped.
func (r *Recorder) Emit(rec encounter.Record) {
	var payload datatypes.JSON
	if len(rec.Data) > 0 {
		raw, err := json.Marshal(rec.Data)
		if err != nil {
			r.logger.Warn("encounter event payload not encodable",
				zap.String("type", string(rec.Type)), zap.Error(err))
		} else {
			payload = datatypes.JSON(raw)
		}
	}
	row := &model.EncounterEvent{
		EncounterID: rec.EncounterID,
		BossID:      int64(rec.Boss),
		BossType:    rec.BossType,
		Mechanic:    rec.Mechanic.String(),
		Type:        string(rec.Type),
		Phase:       rec.Phase,
		Tick:        rec.Tick,
		Payload:     payload,
	}
	select {
	case r.ch <- row:
	default:
		r.logger.Warn("audit channel full, dropping event",
			zap.String("encounter_id", rec.EncounterID),
			zap.String("type", string(rec.Type)))
	}
}

// Stop flushes remaining events and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (r *Recorder) Stop(_ context.Context) {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.EncounterEvent, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.db.Create(&batch).Error; err != nil {
			r.logger.Error("audit batch write failed", zap.Int("rows", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case row := <-r.ch:
			batch = append(batch, row)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-r.stopCh:
			// Drain remaining events.
			for {
				select {
				case row := <-r.ch:
					batch = append(batch, row)
				default:
					flush()
					return
				}
			}
		}
	}
}
