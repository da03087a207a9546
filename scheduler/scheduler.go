// Package scheduler runs named background tasks on fixed intervals:
// the popularity-ranking refresh and the audit flush cadence.
package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is a scheduled task.
type TaskFn func()

// Scheduler owns one goroutine per registered task.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]chan struct{}
	logger *zap.Logger
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates an empty Scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		tasks:  make(map[string]chan struct{}),
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// AddTicker registers fn to run every interval. Registering the same
// name again stops the previous task first. A panicking task is logged
// and its ticker keeps running.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, exists := s.tasks[name]; exists {
		close(cancel)
	}
	cancel := make(chan struct{})
	s.tasks[name] = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(name, fn)
			case <-cancel:
				return
			case <-s.stopCh:
				return
			}
		}
	}()

	s.logger.Info("task scheduled",
		zap.String("task", name), zap.Duration("interval", interval))
}

func (s *Scheduler) run(name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked",
				zap.String("task", name), zap.Any("recover", r))
		}
	}()
	fn()
}

// Stop halts every task and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
}
