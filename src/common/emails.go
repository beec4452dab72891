package common

import (
	"campusgate/src/lib"
	awslib "campusgate/src/lib/aws"
	"campusgate/src/types"
	"context"
	"errors"
	"log"
	"time"

	"github.com/tidwall/gjson"
)

var ErrInvalidPayload = errors.New("invalid email payload")

const sendTimeout = 30 * time.Second

// Sender delivers one queued email.
type Sender interface {
	Send(ctx context.Context, input *lib.SendMailInput) error
}

func stringArray(payload string, path string) []string {
	out := make([]string, 0)
	for _, item := range gjson.Get(payload, path).Array() {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseEmailPayload decodes the JSON body written by the queue mailer.
func ParseEmailPayload(payload string) (*lib.SendMailInput, error) {
	if !gjson.Valid(payload) {
		return nil, ErrInvalidPayload
	}
	input := &lib.SendMailInput{
		From:     gjson.Get(payload, "from").String(),
		FromName: gjson.Get(payload, "from-name").String(),
		To:       stringArray(payload, "to"),
		Cc:       stringArray(payload, "cc"),
		Bcc:      stringArray(payload, "bcc"),
		ReplyTo:  gjson.Get(payload, "reply-to").String(),
		Subject:  gjson.Get(payload, "subject").String(),
		Body:     gjson.Get(payload, "body").String(),
		Html:     gjson.Get(payload, "html").Bool(),
	}
	if len(input.To) == 0 {
		return nil, ErrInvalidPayload
	}
	return input, nil
}

// EmailsHandler returns a queue handler that delivers each payload with s.
func EmailsHandler(name string, s Sender) types.Handler {
	return func(payload string) {
		input, err := ParseEmailPayload(payload)
		if err != nil {
			log.Printf("[%s]: Received invalid json body. Aborting", name)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.Send(ctx, input); err != nil {
			log.Printf("[MAILER] error sending email: %s\n", err.Error())
			return
		}
		log.Printf("[MAILER]: an email has been sent to %s\n", input.To)
	}
}

func KafkaEmailsToSendConsumer(ctx context.Context, topic string, s Sender) error {
	return lib.KafkaConsume(ctx, "emails", topic, EmailsHandler(topic, s))
}

func EmailsToSendConsumer(ctx context.Context, client lib.SQSAPI, queue string, s Sender) error {
	c := awslib.NewSQSConsumer(client, queue, EmailsHandler(queue, s))
	return c.Listen(ctx)
}
