package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/retentlabs/retent/internal/service/optimization"
	"github.com/retentlabs/retent/internal/store"
)

// Sweeper periodically enumerates learners with review history and
// enqueues a cadence-gated optimization task for each. The orchestrator
// decides per learner whether a pass actually runs.
type Sweeper struct {
	scheduler    *gocron.Scheduler
	reviewLog    store.ReviewLogStore
	orchestrator *optimization.Orchestrator
	queue        QueueWriter
	interval     time.Duration
	logger       *slog.Logger
}

// NewSweeper creates a sweeper that runs every interval. Intervals
// under a minute are raised to a minute.
func NewSweeper(
	reviewLog store.ReviewLogStore,
	orch *optimization.Orchestrator,
	queue QueueWriter,
	interval time.Duration,
	log *slog.Logger,
) *Sweeper {
	if reviewLog == nil {
		panic("reviewLog cannot be nil")
	}
	if orch == nil {
		panic("orch cannot be nil")
	}
	if queue == nil {
		panic("queue cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Sweeper{
		scheduler:    gocron.NewScheduler(time.UTC),
		reviewLog:    reviewLog,
		orchestrator: orch,
		queue:        queue,
		interval:     interval,
		logger:       log.With(slog.String("component", "optimization_sweeper")),
	}
}

// Start begins the periodic sweep in the background.
func (s *Sweeper) Start() {
	_, err := s.scheduler.Every(s.interval).Do(s.sweep)
	if err != nil {
		s.logger.Error("failed to schedule optimization sweep",
			slog.String("error", err.Error()))
		return
	}
	s.scheduler.StartAsync()
	s.logger.Info("optimization sweep scheduled",
		slog.Duration("interval", s.interval))
}

// Stop terminates the sweep schedule. In-flight enqueued tasks still
// run on the worker pool.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	learners, err := s.reviewLog.ListLearners(ctx)
	if err != nil {
		s.logger.Error("sweep failed to list learners",
			slog.String("error", err.Error()))
		return
	}

	enqueued := 0
	for _, learnerID := range learners {
		t := NewOptimizationTask(learnerID, s.orchestrator, false)
		if err := s.queue.Enqueue(t); err != nil {
			// A full queue just means this learner waits for the next
			// sweep.
			s.logger.Warn("sweep could not enqueue optimization",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()))
			continue
		}
		enqueued++
	}

	s.logger.Debug("optimization sweep completed",
		slog.Int("learners", len(learners)),
		slog.Int("enqueued", enqueued))
}
