package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coopcare/admin-api/internal/email"
	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
	"github.com/coopcare/admin-api/pkg/logger"
	"github.com/coopcare/admin-api/pkg/messaging"
	"github.com/coopcare/admin-api/pkg/metrics"
)

// PushChannel is the broker channel push notifications are relayed on.
const PushChannel = "notifications.push"

type DispatcherConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Dispatcher drains due notifications and delivers them over their
// channel. Multiple dispatchers can run concurrently; the claim lease
// in ListDue keeps their batches disjoint.
type Dispatcher struct {
	repo    repository.NotificationRepository
	email   email.Service
	broker  messaging.Broker
	config  DispatcherConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(
	repo repository.NotificationRepository,
	emailSvc email.Service,
	broker messaging.Broker,
	config DispatcherConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 15 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = time.Minute
	}

	return &Dispatcher{
		repo:    repo,
		email:   emailSvc,
		broker:  broker,
		config:  config,
		logger:  log,
		metrics: m,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info("starting notification dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down notification dispatcher")
			return
		case <-ticker.C:
			if err := d.dispatchBatch(ctx); err != nil {
				d.logger.Error(err, "failed to dispatch notifications")
			}
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(d.metrics.DispatchLatency)
	defer timer.ObserveDuration()

	claimTimer := prometheus.NewTimer(d.metrics.DatabaseLatency.WithLabelValues("list_due_notifications"))
	due, err := d.repo.ListDue(ctx, d.config.BatchSize)
	claimTimer.ObserveDuration()
	if err != nil {
		d.metrics.DatabaseOperations.WithLabelValues("list_due_notifications", "error").Inc()
		return fmt.Errorf("failed to list due notifications: %w", err)
	}
	d.metrics.DatabaseOperations.WithLabelValues("list_due_notifications", "success").Inc()
	d.metrics.NotificationsPending.Set(float64(len(due)))

	for _, n := range due {
		if err := d.dispatch(ctx, n); err != nil {
			d.logger.Error(err, "failed to deliver notification",
				"notification_id", n.ID.String(),
				"channel", string(n.Channel))
			d.recordFailure(ctx, n, err)
			continue
		}
		d.recordSuccess(ctx, n)
	}

	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, n *model.Notification) error {
	switch n.Channel {
	case model.NotificationChannelEmail:
		return d.email.Send(n.Recipient, n.Subject, n.Content)
	case model.NotificationChannelPush:
		return d.broker.Publish(ctx, PushChannel, model.PushPayload{
			RecipientID: n.RecipientID,
			Title:       n.Subject,
			Body:        n.Content,
			Data:        n.Data,
		})
	case model.NotificationChannelInApp:
		// In-app notifications are read straight from the table; marking
		// them sent makes them visible.
		return nil
	default:
		return fmt.Errorf("unknown notification channel: %s", n.Channel)
	}
}

func (d *Dispatcher) recordSuccess(ctx context.Context, n *model.Notification) {
	now := time.Now()
	n.Status = model.NotificationStatusSent
	n.SentAt = &now
	n.NextRetryAt = nil
	if err := d.repo.Update(ctx, n); err != nil {
		d.logger.Error(err, "failed to mark notification sent", "notification_id", n.ID.String())
		return
	}
	d.metrics.NotificationsSent.WithLabelValues(string(n.Channel)).Inc()
}

func (d *Dispatcher) recordFailure(ctx context.Context, n *model.Notification, cause error) {
	n.RetryCount++
	n.LastError = cause.Error()

	if n.RetryCount >= d.config.MaxRetries {
		n.Status = model.NotificationStatusFailed
		n.NextRetryAt = nil
		d.metrics.NotificationsFailed.WithLabelValues(string(n.Channel)).Inc()
	} else {
		// Linear backoff scaled by attempt count.
		next := time.Now().Add(d.config.RetryBackoff * time.Duration(n.RetryCount))
		n.Status = model.NotificationStatusRetrying
		n.NextRetryAt = &next
		d.metrics.NotificationRetries.Inc()
	}

	if err := d.repo.Update(ctx, n); err != nil {
		d.logger.Error(err, "failed to record notification failure", "notification_id", n.ID.String())
	}
}
