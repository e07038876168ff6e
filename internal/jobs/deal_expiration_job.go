package jobs

import (
	"context"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultDealExpirationSchedule runs the sweep at the start of every minute.
const DefaultDealExpirationSchedule = "0 * * * * *"

const sweepTimeout = 30 * time.Second

// DealSweeper retires deals whose end date has passed.
type DealSweeper interface {
	Handle(ctx context.Context, cmd commands.ExpireDealsCommand) (int, error)
}

// DealExpirationJob periodically flips expired deals to inactive.
// Quantities are never touched, so an expired deal still reports what it sold.
type DealExpirationJob struct {
	handler  DealSweeper
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewDealExpirationJob creates the job. schedule is a six field cron expression (with seconds);
// an empty schedule means DefaultDealExpirationSchedule.
func NewDealExpirationJob(handler DealSweeper, schedule string, log *zap.Logger) *DealExpirationJob {
	if schedule == "" {
		schedule = DefaultDealExpirationSchedule
	}
	return &DealExpirationJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.OrNop(log).With(zap.String("component", "deal_expiration_job")),
	}
}

// Start registers the sweep and starts the scheduler.
func (j *DealExpirationJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Deal expiration job started", zap.String("schedule", j.schedule))
	return nil
}

// Run performs one sweep. It is what the scheduler calls and what the sweep command runs once.
func (j *DealExpirationJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cmd, err := commands.NewExpireDealsCommand(time.Now().UTC())
	if err != nil {
		j.logger.Error("Deal expiration job failed", zap.Error(err))
		return
	}

	retired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("Deal expiration job failed", zap.Error(err))
		return
	}
	if retired > 0 {
		j.logger.Info("Expired deals retired", zap.Int("count", retired))
	}
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *DealExpirationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Deal expiration job stopped")
}
