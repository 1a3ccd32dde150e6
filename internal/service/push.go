package service

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"buildhub/pkg/metrics"
)

// SNSService is the SNS surface used by the relay, declared for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// PushPayload is one device push message.
type PushPayload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	ActionURL string `json:"actionUrl,omitempty"`
}

// PushReport carries per-token outcome counts for one send.
type PushReport struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// PushRelay delivers best-effort device pushes through SNS platform
// endpoints. The notification store stays the source of truth; a failed or
// skipped push is only logged, never retried.
type PushRelay struct {
	tokens DeviceTokenStore
	client SNSService
	logger *zap.Logger
}

func NewPushRelay(tokens DeviceTokenStore, client SNSService, logger *zap.Logger) *PushRelay {
	return &PushRelay{
		tokens: tokens,
		client: client,
		logger: logger,
	}
}

// Send resolves each user's device token, skipping users without one, and
// publishes the payload to every token.
func (p *PushRelay) Send(ctx context.Context, userIDs []string, payload PushPayload) (*PushReport, error) {
	tokens, err := p.tokens.DeviceTokens(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	report := &PushReport{Skipped: len(userIDs) - len(tokens)}
	for i := 0; i < report.Skipped; i++ {
		metrics.IncrementPush("skipped")
	}

	for userID, token := range tokens {
		_, err := p.client.Publish(ctx, &sns.PublishInput{
			TargetArn: aws.String(token),
			Message:   aws.String(string(body)),
		})
		if err != nil {
			report.Failed++
			metrics.IncrementPush("failed")
			p.logger.Error("Push send failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		report.Sent++
		metrics.IncrementPush("sent")
	}

	return report, nil
}
