package deadlines

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/metrics"
	"sharepoint-portal/portal-backend/internal/sharepoints"
)

// Overdue is one open SharePoint whose deadline has passed.
type Overdue struct {
	ID        string
	Title     string
	CreatedBy string
	Deadline  time.Time
	Status    sharepoints.Status
}

// Sweeper finds open SharePoints past their deadline.
type Sweeper struct {
	repo      sharepoints.Repository
	logger    *zap.Logger
	batchSize int
	now       func() time.Time
}

func NewSweeper(repo sharepoints.Repository, logger *zap.Logger, batchSize int) *Sweeper {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Sweeper{repo: repo, logger: logger, batchSize: batchSize, now: time.Now}
}

// Sweep pages through every overdue SharePoint, logs it and publishes the total as a gauge.
func (s *Sweeper) Sweep(ctx context.Context) ([]Overdue, error) {
	now := s.now().UTC()
	filter := sharepoints.Filter{OverdueAt: &now}
	sort := sharepoints.Sort{Field: sharepoints.SortDeadline}

	var found []Overdue
	for offset := 0; ; offset += s.batchSize {
		batch, err := s.repo.List(ctx, filter, sort, sharepoints.Page{Offset: offset, Limit: s.batchSize})
		if err != nil {
			return nil, fmt.Errorf("failed to list overdue sharepoints: %w", err)
		}
		for i := range batch {
			sp := &batch[i]
			completion := sharepoints.ComputeCompletion(sp, now)
			if !completion.IsOverdue {
				continue
			}
			found = append(found, Overdue{
				ID:        sp.ID.String(),
				Title:     sp.Title,
				CreatedBy: sp.CreatedBy.String(),
				Deadline:  sp.Deadline,
				Status:    completion.Status,
			})
			s.logger.Warn("SharePoint overdue",
				zap.String("sharepoint_id", sp.ID.String()),
				zap.String("title", sp.Title),
				zap.String("status", string(completion.Status)),
				zap.Int("completion_percentage", completion.CompletionPercentage),
				zap.Duration("overdue_by", now.Sub(sp.Deadline)))
		}
		if len(batch) < s.batchSize {
			break
		}
	}

	metrics.SetOverdue(len(found))
	s.logger.Info("Deadline sweep finished", zap.Int("overdue", len(found)))
	return found, nil
}

// Scheduler runs the sweeper on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	logger  *zap.Logger
	mu      sync.Mutex
	running bool
}

func NewScheduler(sweeper *Sweeper, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start registers the sweep under schedule (standard cron syntax or @every descriptors),
// runs it once immediately and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("deadline scheduler already running")
	}

	run := func() {
		if _, err := s.sweeper.Sweep(ctx); err != nil {
			s.logger.Error("Deadline sweep failed", zap.Error(err))
		}
	}
	if _, err := s.cron.AddFunc(schedule, run); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	s.logger.Info("Starting deadline scheduler", zap.String("schedule", schedule))
	run()
	s.cron.Start()
	s.running = true
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.logger.Info("Stopping deadline scheduler")
	<-s.cron.Stop().Done()
	s.running = false
}
