package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

const defaultInterval = 5 * time.Minute

type CronScheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  logger.Logger

	mu      sync.Mutex
	entries map[cron.EntryID]context.CancelFunc
	started bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

func NewCronScheduler(timeout time.Duration, log logger.Logger) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(cron.WithSeconds()),
		timeout: timeout,
		logger:  log.WithField("component", "cron_scheduler"),
		entries: make(map[cron.EntryID]context.CancelFunc),
	}
}

// Schedule runs task every interval until Stop is called or ctx is done. Each
// run gets its own timeout derived from ctx.
func (s *CronScheduler) Schedule(ctx context.Context, interval time.Duration, task ports.Task) error {
	spec := intervalToSpec(interval)
	s.logger.Debugf("Scheduling task with spec %q", spec)

	taskCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(spec, s.wrapTask(taskCtx, task))
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule task: %w", err)
	}
	s.entries[entryID] = cancel

	if !s.started {
		s.cron.Start()
		s.started = true
		s.logger.Info("Cron scheduler started")
	}

	s.logger.Infof("Task scheduled every %v (entry %d)", interval, entryID)
	return nil
}

func (s *CronScheduler) wrapTask(ctx context.Context, task ports.Task) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}

		startTime := time.Now()
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if err := task(runCtx); err != nil {
			s.logger.Errorf("Task failed after %v: %v", time.Since(startTime), err)
			return
		}

		s.logger.Debugf("Task completed in %v", time.Since(startTime))
	}
}

// Stop cancels running tasks and waits for them to return.
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	for entryID, cancel := range s.entries {
		cancel()
		s.cron.Remove(entryID)
	}
	s.entries = make(map[cron.EntryID]context.CancelFunc)
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("Cron scheduler stopped")
}

func intervalToSpec(interval time.Duration) string {
	if interval <= 0 {
		interval = defaultInterval
	}
	if interval < time.Second {
		interval = time.Second
	}
	return "@every " + interval.String()
}
