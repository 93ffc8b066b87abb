package messaging

import (
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// ProducerConfig holds the Kafka producer settings
type ProducerConfig struct {
	Brokers     []string
	Topic       string
	ClientID    string
	Timeout     time.Duration
	Retries     int
	Compression string // none, gzip, snappy, lz4, zstd
}

// KafkaProducer publishes status events to a Kafka topic
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaProducer creates a new Kafka producer for status events
func NewKafkaProducer(cfg ProducerConfig) (*KafkaProducer, error) {
	log.Printf("[DEBUG] KafkaProducer - initializing with brokers: %v, topic: %s", cfg.Brokers, cfg.Topic)

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll // Wait for all replicas to acknowledge
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = cfg.Retries
	config.Producer.Compression = parseCompression(cfg.Compression)
	if cfg.ClientID != "" {
		config.ClientID = cfg.ClientID
	}
	if cfg.Timeout > 0 {
		config.Producer.Timeout = cfg.Timeout
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, config)
	if err != nil {
		log.Printf("[DEBUG] KafkaProducer - failed to create producer: %v", err)
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("[DEBUG] KafkaProducer - producer created successfully")
	return &KafkaProducer{
		producer: producer,
		topic:    cfg.Topic,
	}, nil
}

func parseCompression(name string) sarama.CompressionCodec {
	switch name {
	case "gzip":
		return sarama.CompressionGZIP
	case "lz4":
		return sarama.CompressionLZ4
	case "zstd":
		return sarama.CompressionZSTD
	case "none":
		return sarama.CompressionNone
	default:
		return sarama.CompressionSnappy
	}
}

// SendMessage sends a message to the configured topic with the given key and headers
func (k *KafkaProducer) SendMessage(key string, value []byte, headers map[string]string) error {
	log.Printf("[DEBUG] KafkaProducer - sending message with key: %s", key)

	kafkaHeaders := make([]sarama.RecordHeader, 0, len(headers))
	for name, v := range headers {
		kafkaHeaders = append(kafkaHeaders, sarama.RecordHeader{
			Key:   []byte(name),
			Value: []byte(v),
		})
	}

	kafkaMessage := &sarama.ProducerMessage{
		Topic:     k.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Headers:   kafkaHeaders,
		Timestamp: time.Now(),
	}

	partition, offset, err := k.producer.SendMessage(kafkaMessage)
	if err != nil {
		log.Printf("[DEBUG] KafkaProducer - failed to send message: %v", err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Printf("[DEBUG] KafkaProducer - message sent successfully to partition %d at offset %d", partition, offset)
	return nil
}

// SendStatusEvent publishes a status event keyed by its operation ID
func (k *KafkaProducer) SendStatusEvent(event *StatusEvent) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode status event: %w", err)
	}

	headers := map[string]string{
		"event_type": event.EventType,
	}
	return k.SendMessage(event.OperationID, payload, headers)
}

// Close closes the Kafka producer
func (k *KafkaProducer) Close() error {
	log.Printf("[DEBUG] KafkaProducer - closing producer")
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}
