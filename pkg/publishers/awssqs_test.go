package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/Adda-Baaj/bangla-khobor/internal/domain"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		typ:      TypeSQS,
		queueURL: "https://sqs.ap-south-1.amazonaws.com/123/articles",
		client:   client,
		log:      nopLogger{},
	}

	err := pub.Publish(context.Background(), Event{
		SiteID:  "prothom-alo",
		Article: domain.Article{Title: "শিরোনাম", URL: "https://www.prothomalo.com/x"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if client.input == nil {
		t.Fatal("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://sqs.ap-south-1.amazonaws.com/123/articles" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["site_id"]
	if !ok || aws.ToString(attr.StringValue) != "prothom-alo" {
		t.Fatalf("site_id attribute missing or wrong: %#v", attr)
	}
}

func TestSQSPublisherError(t *testing.T) {
	pub := &sqsPublisher{
		id:       "queue",
		typ:      TypeSQS,
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: errors.New("throttled")},
		log:      nopLogger{},
	}

	if err := pub.Publish(context.Background(), Event{SiteID: "ittefaq"}); err == nil {
		t.Fatal("expected error")
	}
}
