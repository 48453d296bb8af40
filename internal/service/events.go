package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

const (
	TopicOrders    = "order_events"
	TopicProducts  = "product_events"
	TopicDiscounts = "discount_events"
	TopicUsers     = "user_events"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// publish is fire-and-log: a broker outage never fails the request that caused the event.
func publish(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.PublishEvent(pctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
