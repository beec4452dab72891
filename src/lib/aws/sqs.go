package aws

import (
	"campusgate/src/lib"
	"campusgate/src/types"
	"context"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type SQSConsumer struct {
	Name    string
	client  lib.SQSAPI
	handler types.Handler
}

func NewSQSConsumer(client lib.SQSAPI, queue string, handler types.Handler) *SQSConsumer {
	return &SQSConsumer{
		Name:    queue,
		client:  client,
		handler: handler,
	}
}

// Listen long-polls the queue until ctx is done. Each message is deleted
// after its handler returns.
func (s *SQSConsumer) Listen(ctx context.Context) error {
	qurl, err := s.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(s.Name),
	})
	if err != nil {
		log.Printf("[SQS] Failed to retrieve queue URL for %s: %s\n", s.Name, err.Error())
		return err
	}
	go func() {
		log.Printf("[SQS] %s: Listening for messages...", s.Name)
		for ctx.Err() == nil {
			if err := s.poll(ctx, qurl.QueueUrl); err != nil {
				log.Printf("[SQS] Error receiving messages: %s\n", err.Error())
				return
			}
		}
	}()
	return nil
}

func (s *SQSConsumer) poll(ctx context.Context, qurl *string) error {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            qurl,
		WaitTimeSeconds:     20,
		MaxNumberOfMessages: 10,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	for i := range output.Messages {
		m := &output.Messages[i]
		s.handler(strings.Clone(aws.ToString(m.Body)))
		lib.SQSDeleteMessage(ctx, s.client, qurl, m)
	}
	return nil
}
