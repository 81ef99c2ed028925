package submission

import (
	"context"

	"property-quote/internal/common/aws"
	"property-quote/internal/common/errors"
	"property-quote/internal/common/logger"
)

const EventQuoteCreated = "quote.created"

// SNSEventPublisher announces created quotes on an SNS topic.
type SNSEventPublisher struct {
	client *aws.SNSClient
	logger logger.Logger
}

func NewSNSEventPublisher(client *aws.SNSClient, log logger.Logger) *SNSEventPublisher {
	return &SNSEventPublisher{client: client, logger: log}
}

func (p *SNSEventPublisher) PublishQuoteCreated(ctx context.Context, event QuoteCreated) error {
	id, err := p.client.PublishEvent(ctx, EventQuoteCreated, event)
	if err != nil {
		return errors.NewEventPublishFailedError(EventQuoteCreated, err)
	}
	p.logger.Debug("event published", map[string]interface{}{
		"event":     EventQuoteCreated,
		"messageId": id,
		"quoteId":   event.QuoteID,
	})
	return nil
}
