package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"trackjob-backend/internal/bootstrap"
	"trackjob-backend/internal/shared/config"
	"trackjob-backend/internal/shared/telemetry"
	"trackjob-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return sweepBatch(ctx, app.Sweeper, event), nil
}

// sweepBatch reports retryable failures only; malformed records are dropped.
func sweepBatch(ctx context.Context, processor workerproc.Processor, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		outcome, err := workerproc.HandleMessage(ctx, processor, record.Body)
		if err != nil {
			fields := map[string]any{"sqs_message_id": record.MessageId, "error": err.Error()}
			if workerproc.Unrecoverable(err) {
				telemetry.Error("worker.sweep.dropped", fields)
				continue
			}
			telemetry.Error("worker.sweep.failed", fields)
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
		telemetry.Info("worker.sweep.completed", map[string]any{"sqs_message_id": record.MessageId, "outcome": string(outcome)})
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
