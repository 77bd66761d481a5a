package services

import (
	"context"
	"time"

	"civicfix-be/models"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSweepSpec runs the escalation sweep every night at midnight.
const DefaultSweepSpec = "0 0 * * *"

const (
	sweepLockKey = "civicfix:escalation-sweep:lock"
	sweepLockTTL = 10 * time.Minute
)

// SweepStore is the slice of persistence the escalation sweep needs.
type SweepStore interface {
	UnresolvedComplaints(ctx context.Context) ([]models.Complaint, error)
	SavePriorityScore(ctx context.Context, c *models.Complaint, score int) error
}

// Sweeper owns the recurring re-scoring job. Unresolved scores go stale over
// time purely due to the age term, so they are refreshed independently of any
// user action. The lifecycle is explicit: Start schedules the cron entry,
// Stop drains it on shutdown.
type Sweeper struct {
	store   SweepStore
	redis   *redis.Client // nil disables the cross-replica lock
	cron    *cron.Cron
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewSweeper(store SweepStore, redisClient *redis.Client, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		store:   store,
		redis:   redisClient,
		cron:    cron.New(),
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Start schedules the sweep. An empty spec uses the nightly default.
func (s *Sweeper) Start(spec string) error {
	if spec == "" {
		spec = DefaultSweepSpec
	}

	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := s.RunEscalationSweep(ctx); err != nil {
			s.logger.Error("escalation sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("escalation sweep scheduled", zap.String("spec", spec))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunEscalationSweep recomputes and persists the priority score of every
// unresolved complaint. A single record's failure is logged and skipped so
// one bad document never blocks the rest of the batch. When Redis is
// configured, an advisory lock guarantees at most one sweep runs across
// replicas.
func (s *Sweeper) RunEscalationSweep(ctx context.Context) error {
	if s.redis != nil {
		acquired, err := s.redis.SetNX(ctx, sweepLockKey, "1", sweepLockTTL).Result()
		if err != nil {
			return err
		}
		if !acquired {
			s.logger.Info("escalation sweep already running elsewhere, skipping")
			return nil
		}
		defer s.redis.Del(context.WithoutCancel(ctx), sweepLockKey)
	}

	complaints, err := s.store.UnresolvedComplaints(ctx)
	if err != nil {
		return err
	}

	now := s.nowFunc()
	rescored := 0
	for i := range complaints {
		c := &complaints[i]
		score := CalculatePriority(c, now)
		if err := s.store.SavePriorityScore(ctx, c, score); err != nil {
			s.logger.Warn("failed to persist recomputed score",
				zap.String("complaint_id", c.ID.Hex()),
				zap.Error(err))
			continue
		}
		rescored++
	}

	s.logger.Info("escalation sweep completed",
		zap.Int("unresolved", len(complaints)),
		zap.Int("rescored", rescored))
	return nil
}
