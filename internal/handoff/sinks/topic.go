package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	commonaws "murmax-onboarding/internal/common/aws"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/handoff"
)

// TopicPublisher fans handoff events out to an SNS topic. Subscribers can
// filter on the role and type message attributes.
type TopicPublisher struct {
	client   commonaws.SNSAPI
	topicARN string
	logger   logger.Logger
}

func NewTopicPublisher(client commonaws.SNSAPI, topicARN string, log logger.Logger) *TopicPublisher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &TopicPublisher{client: client, topicARN: topicARN, logger: logger.Component(log, "topic-publisher")}
}

func (p *TopicPublisher) Name() string { return "sns-topic" }

type topicMessage struct {
	EventID  string      `json:"eventId"`
	Type     string      `json:"type"`
	Fragment string      `json:"fragment"`
	Record   interface{} `json:"record"`
}

func (p *TopicPublisher) Consume(ctx context.Context, ev handoff.Event) error {
	msg, err := json.Marshal(topicMessage{
		EventID:  ev.ID,
		Type:     ev.Type,
		Fragment: ev.Fragment,
		Record:   ev.Record,
	})
	if err != nil {
		return fmt.Errorf("encode topic message %s: %w", ev.Record.ID, err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(msg)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"role": {DataType: aws.String("String"), StringValue: aws.String(string(ev.Record.Role))},
			"type": {DataType: aws.String("String"), StringValue: aws.String(ev.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.Record.ID, p.topicARN, err)
	}

	p.logger.Debug("handoff published to topic", map[string]interface{}{
		"recordId":  ev.Record.ID,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}
