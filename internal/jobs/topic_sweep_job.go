package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// TopicSweeper removes idle tracking topics.
type TopicSweeper interface {
	SweepIdle(now time.Time) int
	TopicCount() int
}

// TopicSweepJob drops broker topics nobody listens to any more, such as
// topics opened by location pings sent over HTTP.
type TopicSweepJob struct {
	sweeper TopicSweeper
	cron    *cron.Cron
	logger  *slog.Logger
	now     func() time.Time
}

func NewTopicSweepJob(sweeper TopicSweeper, logger *slog.Logger) *TopicSweepJob {
	return &TopicSweepJob{
		sweeper: sweeper,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "topic_sweep_job"),
		now:     time.Now,
	}
}

// Start runs the sweep every 30 seconds.
func (j *TopicSweepJob) Start() error {
	if _, err := j.cron.AddFunc("*/30 * * * * *", j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Topic sweep job started (running every 30 seconds)")
	return nil
}

// Run performs one sweep.
func (j *TopicSweepJob) Run() {
	if removed := j.sweeper.SweepIdle(j.now()); removed > 0 {
		j.logger.Info("Idle topics removed", "count", removed, "open", j.sweeper.TopicCount())
	}
}

// Stop stops scheduling and waits for a running sweep to finish.
func (j *TopicSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Topic sweep job stopped")
}
