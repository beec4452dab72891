package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSMSSender sends transactional SMS straight to a phone number.
type SNSSMSSender struct {
	client   SNSAPI
	senderID string
}

func NewSNSSMSSender(client SNSAPI, senderID string) *SNSSMSSender {
	return &SNSSMSSender{client: client, senderID: senderID}
}

func (s *SNSSMSSender) SendSMS(ctx context.Context, phone string, message string) error {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(s.senderID)}
	}
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		log.Printf("[SNS] Error sending SMS: %s\n", err.Error())
		return err
	}
	log.Printf("[SNS] Sent SMS with id: %s\n", aws.ToString(out.MessageId))
	return nil
}
