package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/events"
)

// Forwarder hands events to an out-of-process sink without blocking the caller.
type Forwarder interface {
	Enqueue(event events.Event) bool
}

// NotificationService handles emitting notifications for dispute events.
type NotificationService struct {
	dispatcher events.Dispatcher
	forwarder  Forwarder
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. forwarder may be nil.
func NewNotificationService(dispatcher events.Dispatcher, forwarder Forwarder, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		forwarder:  forwarder,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDisputeCreated, n.handleDisputeCreated)
	n.dispatcher.Subscribe(events.EventDisputeStatusChanged, n.handleDisputeStatusChanged)
}

func (n *NotificationService) handleDisputeCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("DisputeCreated", zap.String("dispute_id", event.DisputeID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	n.forward(event)
	return nil
}

func (n *NotificationService) handleDisputeStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("DisputeStatusChanged", zap.String("dispute_id", event.DisputeID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	n.forward(event)
	return nil
}

func (n *NotificationService) forward(event events.Event) {
	if n.forwarder == nil {
		return
	}
	if !n.forwarder.Enqueue(event) {
		n.logger.Warn("event stream queue full; dropping event",
			zap.String("dispute_id", event.DisputeID),
			zap.String("event_type", string(event.Type)))
	}
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("dispute_id", event.DisputeID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("dispute_id", event.DisputeID),
		zap.String("event_type", string(event.Type)))
}
