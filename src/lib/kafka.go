package lib

import (
	"campusgate/src/types"
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func GetKafkaProducerConfig(clientId string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	}
}

func GetKafkaConsumerConfig(groupId string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	}
}

// KafkaProduceMessage publishes payload as JSON and waits for the delivery
// report.
func KafkaProduceMessage(clientId string, topic string, payload any) error {
	p, err := kafka.NewProducer(GetKafkaProducerConfig(clientId))
	if err != nil {
		log.Printf("[kafka] Error creating producer: %s\n", err.Error())
		return err
	}
	defer p.Close()

	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[kafka] Error encoding payload: %s\n", err.Error())
		return err
	}
	delivery := make(chan kafka.Event, 1)
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, delivery)
	if err != nil {
		log.Printf("[kafka] Error producing to %s: %s\n", topic, err.Error())
		return err
	}
	e := <-delivery
	if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
		log.Printf("[kafka] Delivery to %s failed: %s\n", topic, m.TopicPartition.Error.Error())
		return m.TopicPartition.Error
	}
	return nil
}

// KafkaConsume polls topic in the background and hands every message value
// to handler until ctx is done.
func KafkaConsume(ctx context.Context, groupId string, topic string, handler types.Handler) error {
	c, err := kafka.NewConsumer(GetKafkaConsumerConfig(groupId))
	if err != nil {
		log.Printf("[kafka] Error creating consumer: %s\n", err.Error())
		return err
	}
	if err := c.SubscribeTopics([]string{topic}, nil); err != nil {
		log.Printf("[kafka] Error subscribing to %s: %s\n", topic, err.Error())
		c.Close()
		return err
	}
	go func() {
		defer c.Close()
		log.Printf("[kafka] %s: Listening for messages...\n", topic)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch e := c.Poll(100).(type) {
			case *kafka.Message:
				handler(string(e.Value))
			case kafka.Error:
				log.Printf("[kafka] Consumer error on %s: %v\n", topic, e)
				if e.IsFatal() {
					return
				}
			}
		}
	}()
	return nil
}

func KafkaCreateTopics(ctx context.Context, topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("[kafka] Error on AdminClient: %s\n", err.Error())
		return nil, err
	}
	defer a.Close()
	topicsDef := make([]kafka.TopicSpecification, 0, len(topics))
	for _, topic := range topics {
		topicsDef = append(topicsDef, kafka.TopicSpecification{
			Topic:             topic,
			NumPartitions:     10,
			ReplicationFactor: 1,
		})
	}
	result, err := a.CreateTopics(ctx, topicsDef)
	if err != nil {
		log.Printf("[kafka] Error creating topics: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}
