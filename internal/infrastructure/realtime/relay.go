package realtime

import (
	"context"

	"go.uber.org/zap"
	"midatopay.backend/pkg/logger"
	redispkg "midatopay.backend/pkg/redis"
)

// Broadcaster receives relayed payloads
type Broadcaster interface {
	Broadcast(msg []byte) int
}

// Relay feeds messages published on a Redis channel into the local hub, so
// every server instance reaches its own websocket clients.
type Relay struct {
	channel string
	hub     Broadcaster
}

func NewRelay(channel string, hub Broadcaster) *Relay {
	return &Relay{channel: channel, hub: hub}
}

// Run blocks until ctx is cancelled or the subscription breaks.
func (r *Relay) Run(ctx context.Context) error {
	ctx = logger.WithComponent(ctx, "realtime")
	sub, err := redispkg.Subscribe(ctx, r.channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	logger.Info(ctx, "Realtime relay subscribed", zap.String("channel", r.channel))
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			n := r.hub.Broadcast([]byte(msg.Payload))
			logger.Debug(ctx, "Relayed realtime message", zap.Int("clients", n))
		}
	}
}
