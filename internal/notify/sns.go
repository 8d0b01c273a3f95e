package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher is the subset of the SNS client the sink uses.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSink publishes notifications to an SNS topic from a background
// goroutine so the caller never waits on the network.
type SNSSink struct {
	client   Publisher
	topicARN string
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewSNSSink(client Publisher, topicARN string, logger *slog.Logger) *SNSSink {
	return &SNSSink{client: client, topicARN: topicARN, timeout: 5 * time.Second, logger: logger}
}

// NewSNSSinkFromConfig builds the sink from an aws.Config.
func NewSNSSinkFromConfig(cfg aws.Config, topicARN string, logger *slog.Logger) *SNSSink {
	return NewSNSSink(sns.NewFromConfig(cfg), topicARN, logger)
}

func (s *SNSSink) Notify(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode notification", "kind", e.Kind, "error", err)
		return
	}
	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(e.Kind),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(e.Kind),
			},
			"entity_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(e.EntityType),
			},
		},
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		out, err := s.client.Publish(pubCtx, input)
		if err != nil {
			s.logger.WarnContext(pubCtx, "notification publish failed", "kind", e.Kind, "entity_id", e.EntityID, "error", err)
			return
		}
		s.logger.DebugContext(pubCtx, "notification published", "kind", e.Kind, "message_id", aws.ToString(out.MessageId))
	}()
}

// Wait blocks until in-flight publishes finish. Used on shutdown.
func (s *SNSSink) Wait() {
	s.wg.Wait()
}
