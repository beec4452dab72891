package mailer

import (
	"campusgate/src/config"
	"campusgate/src/lib"
	awslib "campusgate/src/lib/aws"
	"campusgate/src/types"
	"campusgate/src/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

const DefaultQueue = "EmailsToSend"

// Publisher hands a serialized mail to a broker.
type Publisher func(ctx context.Context, queue string, body []byte) error

func KafkaPublisher(ctx context.Context, queue string, body []byte) error {
	return lib.KafkaProduceMessage("emails", queue, json.RawMessage(body))
}

func SQSPublisher(ctx context.Context, queue string, body []byte) error {
	client := lib.AWSGetSQSClient()
	if client == nil {
		return fmt.Errorf("sqs client is not configured")
	}
	return lib.SQSProduceMessage(ctx, client, queue, string(body))
}

// QueueMailer enqueues mail for the email consumers instead of sending it
// inline. Local runs go through Kafka, every other environment through SQS.
type QueueMailer struct {
	queue   string
	publish Publisher
}

func NewQueueMailer(queue string, publish Publisher) *QueueMailer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &QueueMailer{queue: utils.WithSuffix(queue), publish: publish}
}

func (m *QueueMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	body, err := json.Marshal(input)
	if err != nil {
		return err
	}
	if err := m.publish(ctx, m.queue, body); err != nil {
		return fmt.Errorf("error sending message to queue: %w", err)
	}
	return nil
}

type SMTPMailer struct{}

func (SMTPMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	if err := lib.SendMail(ctx, input); err != nil {
		log.Printf("[MAILER] error sending email: %s\n", err.Error())
		return err
	}
	return nil
}

// Mailer is satisfied by every transport in this package.
type Mailer interface {
	Send(ctx context.Context, input *lib.SendMailInput) error
}

// NewDirect returns the transport that actually delivers mail: SES when
// MAIL_DELIVERY=ses, SMTP otherwise.
func NewDirect() Mailer {
	if os.Getenv("MAIL_DELIVERY") == "ses" {
		if client := lib.AWSGetSESClient(); client != nil {
			return awslib.NewSESMailer(client)
		}
		log.Println("[MAILER] SES unavailable, falling back to SMTP")
	}
	return SMTPMailer{}
}

// New picks the transport used by the notification dispatcher.
// MAIL_TRANSPORT=queue routes through the broker for the current
// environment; anything else delivers directly.
func New() Mailer {
	if os.Getenv("MAIL_TRANSPORT") != "queue" {
		return NewDirect()
	}
	queue := os.Getenv("EMAIL_QUEUE")
	if config.API_ENV == string(types.Local) {
		return NewQueueMailer(queue, KafkaPublisher)
	}
	return NewQueueMailer(queue, SQSPublisher)
}
