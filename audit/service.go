package audit

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Dm-vYzion/StoryForge/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry holds one audit event to be logged.
type Entry struct {
	TraceID    string
	UserID     *int64
	Action     string
	Request    interface{}
	Response   interface{}
	Error      string
	IP         string
	DurationMs int
}

// Service logs audit entries asynchronously in batches. A batch is
// written when it fills up, on Flush, and on Stop; the periodic Flush
// cadence is driven by the scheduler.
type Service struct {
	db      *gorm.DB
	ch      chan *model.AuditLog
	flushCh chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:      db,
		ch:      make(chan *model.AuditLog, 1024),
		flushCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		logger:  logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Flush asks the worker to write whatever it has batched. Non-blocking;
// a flush request that is already pending is enough.
func (svc *Service) Flush() {
	select {
	case svc.flushCh <- struct{}{}:
	default:
	}
}

// Log enqueues an audit entry for async DB write.
func (svc *Service) Log(entry Entry) {
	reqJSON, _ := json.Marshal(entry.Request)
	respJSON, _ := json.Marshal(entry.Response)
	record := &model.AuditLog{
		TraceID:    entry.TraceID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		Request:    datatypes.JSON(reqJSON),
		Response:   datatypes.JSON(respJSON),
		Error:      entry.Error,
		IP:         entry.IP,
		DurationMs: entry.DurationMs,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", entry.Action))
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	select {
	case <-svc.stopCh:
	default:
		close(svc.stopCh)
	}
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()

	batch := make([]*model.AuditLog, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	drain := func() {
		for {
			select {
			case entry := <-svc.ch:
				batch = append(batch, entry)
			default:
				return
			}
		}
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= 100 {
				flush()
			}
		case <-svc.flushCh:
			drain()
			flush()
		case <-svc.stopCh:
			drain()
			flush()
			return
		}
	}
}
