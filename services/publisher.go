package services

import (
	"context"

	aws_pkg "github.com/agusmuss/Ecom-Next/pkg/aws"
)

// Publisher publishes serialized order events to a message bus. The key
// groups related messages for backends that partition by it; backends
// without partitions may ignore it. Both the SNS and Kafka backends
// implement it; main picks one from config.
type Publisher interface {
	Publish(ctx context.Context, key string, message []byte) error
}

// SNSPublisher binds an SNS client to a fixed topic.
type SNSPublisher struct {
	client   *aws_pkg.SNSClient
	topicARN string
}

func NewSNSPublisher(client *aws_pkg.SNSClient, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

// Publish sends the message to the configured topic. Standard SNS topics
// have no partitions, so the key is not used.
func (p *SNSPublisher) Publish(ctx context.Context, _ string, message []byte) error {
	return p.client.Publish(ctx, p.topicARN, message)
}
