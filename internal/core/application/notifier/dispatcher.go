// Package notifier delivers push notifications for order status changes to
// every device of a user, with retries for transient provider failures and
// pruning of tokens the provider no longer accepts.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/metrics"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

// TokenStore is the part of the token registry the dispatcher needs.
type TokenStore interface {
	ListByUser(ctx context.Context, userID kernel.UUID) ([]notification.PushToken, error)
	Delete(ctx context.Context, token string) error
}

// Config tunes retries and fan-out.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// InitialBackoff doubles on every retry: 1s, 2s, 4s for the defaults.
	InitialBackoff time.Duration
	// MaxConcurrency bounds parallel sends for one notification.
	MaxConcurrency int
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxConcurrency: 8,
	}
}

// Result summarizes one notification.
type Result struct {
	Delivered int
	Pruned    int
	Failed    int
}

// Dispatcher sends status notifications. It is safe for concurrent use.
type Dispatcher struct {
	tokens   TokenStore
	provider ports.PushProvider
	cfg      Config
	logger   *slog.Logger

	inflight sync.WaitGroup
}

func NewDispatcher(tokens TokenStore, provider ports.PushProvider, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultConfig().InitialBackoff
	}

	return &Dispatcher{
		tokens:   tokens,
		provider: provider,
		cfg:      cfg,
		logger:   logger.With("component", "notification_dispatcher"),
	}
}

// Notify sends the status message to every registered token of userID and
// waits for the outcome. One token's failure never stops the others.
//
// Returns an error wrapping notification.ErrPushDeliveryFailed when the user
// has tokens and none of them received the message.
func (d *Dispatcher) Notify(ctx context.Context, userID, orderID kernel.UUID, status order.Status) (Result, error) {
	logger := d.logger.With(
		"user_id", userID.String(),
		"order_id", orderID.String(),
		"status", status.String())

	tokens, err := d.tokens.ListByUser(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("list push tokens: %w", err)
	}
	if len(tokens) == 0 {
		logger.Debug("no push tokens registered")
		return Result{}, nil
	}

	msg := notification.NewStatusMessage(orderID, status)

	var delivered, pruned, failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(d.cfg.MaxConcurrency)

	for _, token := range tokens {
		g.Go(func() error {
			switch err := d.sendWithRetry(ctx, token.Token(), msg); {
			case err == nil:
				delivered.Add(1)
				metrics.PushOutcomes.WithLabelValues(metrics.PushDelivered).Inc()
			case errors.Is(err, notification.ErrTokenUnregistered):
				pruned.Add(1)
				d.prune(ctx, logger, token)
			default:
				failed.Add(1)
				metrics.PushOutcomes.WithLabelValues(metrics.PushRejected).Inc()
				logger.Warn("push to device failed",
					"platform", string(token.Platform()),
					"device_id", token.DeviceID(),
					"error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Delivered: int(delivered.Load()),
		Pruned:    int(pruned.Load()),
		Failed:    int(failed.Load()),
	}

	if res.Delivered == 0 {
		metrics.PushOutcomes.WithLabelValues(metrics.PushUndelivered).Inc()
		err := fmt.Errorf("%w: 0 of %d devices reached", notification.ErrPushDeliveryFailed, len(tokens))
		logger.Warn("notification undelivered", "pruned", res.Pruned, "failed", res.Failed, "error", err)
		return res, err
	}

	logger.Info("notification sent", "delivered", res.Delivered, "pruned", res.Pruned, "failed", res.Failed)
	return res, nil
}

// NotifyAsync runs Notify in the background, detached from ctx cancellation
// so that a finished request does not abort delivery. Failures are logged.
func (d *Dispatcher) NotifyAsync(ctx context.Context, userID, orderID kernel.UUID, status order.Status) {
	ctx = context.WithoutCancel(ctx)

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		_, _ = d.Notify(ctx, userID, orderID, status)
	}()
}

// Wait blocks until background notifications finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, token string, msg notification.Message) error {
	operation := func() error {
		err := d.provider.Send(ctx, token, msg)
		if err == nil || errors.Is(err, notification.ErrProviderUnavailable) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, next time.Duration) {
		metrics.PushOutcomes.WithLabelValues(metrics.PushRetried).Inc()
		d.logger.Debug("retrying push", "retry_in", next, "error", err)
	}

	return backoff.RetryNotify(operation, d.newBackOff(ctx), notify)
}

func (d *Dispatcher) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = d.cfg.InitialBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = d.cfg.InitialBackoff << d.cfg.MaxRetries
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, d.cfg.MaxRetries), ctx)
}

func (d *Dispatcher) prune(ctx context.Context, logger *slog.Logger, token notification.PushToken) {
	metrics.PushOutcomes.WithLabelValues(metrics.PushTokenPruned).Inc()

	if err := d.tokens.Delete(ctx, token.Token()); err != nil {
		logger.Error("failed to prune push token", "device_id", token.DeviceID(), "error", err)
		return
	}
	logger.Info("pruned unregistered push token",
		"platform", string(token.Platform()),
		"device_id", token.DeviceID())
}
