package usecases

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"midatopay.backend/internal/domain/entities"
	"midatopay.backend/pkg/logger"
)

// Broadcaster delivers a message to every client connected to this process
type Broadcaster interface {
	Broadcast(message []byte) int
}

// Publisher relays a message to every API instance
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// MerchantAlerter sends an out-of-band confirmation alert
type MerchantAlerter interface {
	AlertPaymentConfirmed(ctx context.Context, payload entities.PaymentConfirmedPayload) error
}

// NotificationUsecase fans a confirmation out to realtime clients. Delivery is
// best-effort: failures are logged and never returned.
type NotificationUsecase struct {
	hub       Broadcaster
	publisher Publisher
	channel   string
	alerter   MerchantAlerter
}

// NewNotificationUsecase broadcasts on hub only. Use WithRelay and WithAlerter to extend it.
func NewNotificationUsecase(hub Broadcaster) *NotificationUsecase {
	return &NotificationUsecase{hub: hub}
}

// WithRelay publishes through publisher on channel instead of broadcasting locally;
// each instance's relay subscriber feeds its own hub.
func (u *NotificationUsecase) WithRelay(publisher Publisher, channel string) *NotificationUsecase {
	u.publisher = publisher
	u.channel = channel
	return u
}

// WithAlerter adds a merchant alert to every confirmation
func (u *NotificationUsecase) WithAlerter(alerter MerchantAlerter) *NotificationUsecase {
	u.alerter = alerter
	return u
}

// NotifyPaymentConfirmed broadcasts a payment_confirmed message.
func (u *NotificationUsecase) NotifyPaymentConfirmed(ctx context.Context, payload entities.PaymentConfirmedPayload) {
	ctx = logger.WithComponent(ctx, "notifier")
	message, err := json.Marshal(entities.RealtimeMessage{
		Type: entities.PaymentConfirmedMessageType,
		Data: payload,
	})
	if err != nil {
		logger.Error(ctx, "Failed to encode realtime message", zap.Error(err))
		return
	}

	delivered := false
	if u.publisher != nil {
		if err := u.publisher.Publish(ctx, u.channel, message); err != nil {
			logger.Warn(ctx, "Realtime relay publish failed, broadcasting locally", zap.Error(err))
		} else {
			delivered = true
		}
	}
	if !delivered && u.hub != nil {
		sent := u.hub.Broadcast(message)
		logger.Debug(ctx, "Payment confirmation broadcast", zap.Int("clients", sent))
	}

	if u.alerter != nil {
		if err := u.alerter.AlertPaymentConfirmed(ctx, payload); err != nil {
			logger.Warn(ctx, "Merchant alert failed", zap.Error(err))
		}
	}
}
