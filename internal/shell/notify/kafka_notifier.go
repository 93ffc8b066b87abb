package notify

import (
	"context"
	"log"

	"jobwatch/internal/core/domain"
	"jobwatch/internal/shell/messaging"
)

// KafkaNotifier publishes status messages as events on a Kafka topic
// instead of delivering them directly. Recipients travel inside the event;
// per-recipient refusals do not exist on this transport.
type KafkaNotifier struct {
	producer *messaging.KafkaProducer
}

func NewKafkaNotifier(producer *messaging.KafkaProducer) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
	}
}

func (n *KafkaNotifier) Send(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error) {
	log.Printf("Publishing status event via Kafka for operation: %s", msg.OperationID)

	event := messaging.NewStatusEvent(msg)
	if err := n.producer.SendStatusEvent(event); err != nil {
		log.Printf("Failed to publish status event for operation %s: %v", msg.OperationID, err)
		NotificationsTotal.WithLabelValues("kafka", "error").Inc()
		transportErr := &domain.TransportError{Op: "publish", Text: msg.OperationID, Cause: err}
		return domain.DeliveryResult{}, transportErr
	}

	NotificationsTotal.WithLabelValues("kafka", "success").Inc()
	return domain.DeliveryResult{}, nil
}
