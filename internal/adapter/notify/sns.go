package notify

import (
	"context"
	"errors"

	"credit-voucher-engine/internal/domain/event"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

type snsPublisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNS struct {
	client   snsPublisher
	topicARN string
	log      *zap.Logger
}

func NewSNS(ctx context.Context, region, topicARN string, log *zap.Logger) (*SNS, error) {
	if topicARN == "" {
		return nil, errors.New("sns notifier: SNS_TOPIC_ARN is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNS{client: sns.NewFromConfig(cfg), topicARN: topicARN, log: log}, nil
}

func (n *SNS) Notify(ctx context.Context, e event.Event) error {
	body, err := encode(e)
	if err != nil {
		return err
	}
	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(string(e.Type)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(string(e.Type))},
		},
	})
	if err != nil {
		return err
	}
	n.log.Debug("sns published", zap.String("event_id", e.ID), zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}

func (n *SNS) Close() error { return nil }
