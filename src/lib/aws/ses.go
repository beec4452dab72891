package aws

import (
	"campusgate/src/lib"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer delivers mail through Amazon SES.
type SESMailer struct {
	client SESAPI
}

func NewSESMailer(client SESAPI) *SESMailer {
	return &SESMailer{client: client}
}

func SESInput(in *lib.SendMailInput) *ses.SendEmailInput {
	body := &types.Body{}
	content := &types.Content{Data: aws.String(in.Body), Charset: aws.String("UTF-8")}
	if in.Html {
		body.Html = content
	} else {
		body.Text = content
	}
	input := &ses.SendEmailInput{
		Source: aws.String(fmt.Sprintf("%s <%s>", in.FromName, in.From)),
		Destination: &types.Destination{
			ToAddresses:  in.To,
			CcAddresses:  in.Cc,
			BccAddresses: in.Bcc,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(in.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	if in.ReplyTo != "" {
		input.ReplyToAddresses = []string{in.ReplyTo}
	}
	return input
}

func (m *SESMailer) Send(ctx context.Context, in *lib.SendMailInput) error {
	out, err := m.client.SendEmail(ctx, SESInput(in))
	if err != nil {
		log.Printf("[SES] Error sending email: %s\n", err.Error())
		return err
	}
	log.Printf("[SES] Sent email with id: %s\n", aws.ToString(out.MessageId))
	return nil
}
