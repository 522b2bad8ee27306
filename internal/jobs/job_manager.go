package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	topicSweepJob  *TopicSweepJob
	offerExpiryJob *OfferExpiryJob
}

func NewJobManager(
	sweeper TopicSweeper,
	expirer OfferExpirer,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		topicSweepJob:  NewTopicSweepJob(sweeper, logger),
		offerExpiryJob: NewOfferExpiryJob(expirer, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.topicSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start topic sweep job: %w", err)
	}

	if err := jm.offerExpiryJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.topicSweepJob.Stop()
		return fmt.Errorf("failed to start offer expiry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones to finish.
func (jm *JobManager) StopAll() {
	jm.offerExpiryJob.Stop()
	jm.topicSweepJob.Stop()
}
