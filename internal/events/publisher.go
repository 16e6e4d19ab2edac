package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event describes one applied workflow transition.
type Event struct {
	ID           uuid.UUID `json:"id"`
	SharePointID uuid.UUID `json:"sharepointId"`
	Action       string    `json:"action"`
	Status       string    `json:"status"`
	PerformedBy  uuid.UUID `json:"performedBy"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Publisher fans workflow events out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// SNSAPI is the subset of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   SNSAPI
	topicARN string
}

func NewSNSPublisher(client SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (p *SNSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"action": {DataType: aws.String("String"), StringValue: aws.String(event.Action)},
			"status": {DataType: aws.String("String"), StringValue: aws.String(event.Status)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Action, err)
	}
	return nil
}

// LogPublisher only logs events. Used when no topic is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debug("Workflow event",
		zap.String("sharepoint_id", event.SharePointID.String()),
		zap.String("action", event.Action),
		zap.String("status", event.Status))
	return nil
}
