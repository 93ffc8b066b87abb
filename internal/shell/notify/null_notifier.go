package notify

import (
	"context"
	"log"

	"jobwatch/internal/core/domain"
)

// NullNotifier is a no-op transport used when notifications are disabled
// (null object pattern). Every send succeeds and delivers to nobody.
type NullNotifier struct{}

func NewNullNotifier() *NullNotifier {
	return &NullNotifier{}
}

func (n *NullNotifier) Send(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error) {
	log.Printf("Notifications are disabled, skipping message: %s", msg.Subject)
	return domain.DeliveryResult{}, nil
}
