package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSender) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestDelaySecondsClamps(t *testing.T) {
	require.Equal(t, int32(0), DelaySeconds(-time.Second))
	require.Equal(t, int32(90), DelaySeconds(90*time.Second))
	require.Equal(t, int32(900), DelaySeconds(time.Hour))
}

func TestSQSClientSendsDelayedMessage(t *testing.T) {
	sender := &fakeSender{}
	client := newSQSClient(sender, "https://sqs.us-east-1.amazonaws.com/123/orphans", 15*time.Minute)

	err := client.Send(context.Background(), Message{Type: TypeUploadTicketed, FileKey: "u1/resume/1-a.pdf"})
	require.NoError(t, err)
	require.Equal(t, int32(900), sender.input.DelaySeconds)
	require.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/orphans", aws.ToString(sender.input.QueueUrl))

	msg, err := DecodeMessage([]byte(aws.ToString(sender.input.MessageBody)))
	require.NoError(t, err)
	require.Equal(t, "u1/resume/1-a.pdf", msg.FileKey)
}

func TestSQSClientWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	client := newSQSClient(&fakeSender{err: boom}, "q", 0)
	err := client.Send(context.Background(), Message{Type: TypeUploadTicketed})
	require.ErrorIs(t, err, boom)
}

func TestNewSQSClientRequiresURL(t *testing.T) {
	_, err := NewSQSClient(context.Background(), " ", "", time.Minute)
	require.Error(t, err)
}

func TestMemoryClientRecords(t *testing.T) {
	var client MemoryClient
	require.NoError(t, client.Send(context.Background(), Message{FileKey: "a"}))
	require.Len(t, client.Messages(), 1)
}
