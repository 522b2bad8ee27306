package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type OfferExpirer interface {
	Handle(ctx context.Context, cmd commands.DeactivateExpiredOffersCommand) (int64, error)
}

// OfferExpiryJob switches off offers whose end date has passed.
type OfferExpiryJob struct {
	handler OfferExpirer
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewOfferExpiryJob(handler OfferExpirer, logger *slog.Logger) *OfferExpiryJob {
	return &OfferExpiryJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "offer_expiry_job"),
		timeout: 30 * time.Second,
		now:     time.Now,
	}
}

// Start runs the job at the top of every minute.
func (j *OfferExpiryJob) Start() error {
	if _, err := j.cron.AddFunc("* * * * *", j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Offer expiry job started (running every minute)")
	return nil
}

// Run deactivates expired offers once.
func (j *OfferExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.handler.Handle(ctx, commands.NewDeactivateExpiredOffersCommand(j.now()))
	if err != nil {
		j.logger.ErrorContext(ctx, "Offer expiry job failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.InfoContext(ctx, "Expired offers deactivated", "count", n)
	}
}

func (j *OfferExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Offer expiry job stopped")
}
