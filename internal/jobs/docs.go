// Package jobs provides the scheduled background tasks of the service.
//
// Jobs are built on github.com/robfig/cron/v3:
//
//  1. TopicSweepJob runs every 30 seconds and removes idle tracking topics
//  2. OfferExpiryJob runs every minute and deactivates offers past their end date
//
// # Usage
//
//	jobManager := jobs.NewJobManager(broker, &deactivateExpiredOffersHandler, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// Each job exposes Run, which performs one tick synchronously.
package jobs
