package aws

import (
	"campusgate/src/lib"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	in *ses.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = in
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESMailer(t *testing.T) {
	client := &fakeSES{}
	m := NewSESMailer(client)
	err := m.Send(context.Background(), &lib.SendMailInput{
		From:     "gate@college.edu",
		FromName: "Gate Office",
		To:       []string{"asha@college.edu"},
		ReplyTo:  "office@college.edu",
		Subject:  "Gate Pass #4 Status Update",
		Body:     "<p>approved</p>",
		Html:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, client.in)
	assert.Equal(t, "Gate Office <gate@college.edu>", aws.ToString(client.in.Source))
	assert.Equal(t, []string{"asha@college.edu"}, client.in.Destination.ToAddresses)
	assert.Equal(t, []string{"office@college.edu"}, client.in.ReplyToAddresses)
	assert.Nil(t, client.in.Message.Body.Text)
	assert.Equal(t, "<p>approved</p>", aws.ToString(client.in.Message.Body.Html.Data))
}

type fakeSNS struct {
	in  *sns.PublishInput
	err error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

func TestSNSSMSSender(t *testing.T) {
	client := &fakeSNS{}
	s := NewSNSSMSSender(client, "COLLEGE")
	require.NoError(t, s.SendSMS(context.Background(), "+919876543210", "left campus"))
	assert.Equal(t, "+919876543210", aws.ToString(client.in.PhoneNumber))
	assert.Equal(t, "Transactional", aws.ToString(client.in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
	assert.Equal(t, "COLLEGE", aws.ToString(client.in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))

	client.err = errors.New("throttled")
	assert.Error(t, s.SendSMS(context.Background(), "+919876543210", "left campus"))
}

type fakeSQS struct {
	mu       sync.Mutex
	batches  [][]sqstypes.Message
	deleted  []string
	sent     []string
	received chan struct{}
}

func (f *fakeSQS) GetQueueUrl(_ context.Context, in *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.local/" + aws.ToString(in.QueueName))}, nil
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, aws.ToString(in.MessageBody))
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	if len(f.batches) > 0 {
		b := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return &sqs.ReceiveMessageOutput{Messages: b}, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) deletedHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func TestSQSConsumer(t *testing.T) {
	client := &fakeSQS{batches: [][]sqstypes.Message{{
		{Body: aws.String(`{"subject":"a"}`), ReceiptHandle: aws.String("r1")},
		{Body: aws.String(`{"subject":"b"}`), ReceiptHandle: aws.String("r2")},
	}}}
	var mu sync.Mutex
	var got []string
	c := NewSQSConsumer(client, "emails-test", func(payload string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, payload)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Listen(ctx))

	assert.Eventually(t, func() bool { return len(client.deletedHandles()) == 2 }, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{`{"subject":"a"}`, `{"subject":"b"}`}, got)
	mu.Unlock()
}

func TestSQSProduceMessage(t *testing.T) {
	client := &fakeSQS{}
	require.NoError(t, lib.SQSProduceMessage(context.Background(), client, "emails-test", `{"subject":"x"}`))
	assert.Equal(t, []string{`{"subject":"x"}`}, client.sent)
}
