package submission

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-quote/internal/common/aws"
	"property-quote/internal/common/errors"
	"property-quote/internal/common/logger"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
}

func TestSNSEventPublisher_PublishQuoteCreated(t *testing.T) {
	api := &fakeSNS{}
	pub := NewSNSEventPublisher(aws.NewSNSClientWithAPI(api, "arn:aws:sns:eu-west-1:123:quotes"), logger.NewTestLogger(t))

	event := QuoteCreated{
		QuoteID:          "q-1",
		PropertyType:     "Office",
		State:            "Lagos",
		PolicyTierID:     "basic",
		PaymentFrequency: "annual",
		Premium:          "29250.00",
		CreatedAt:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishQuoteCreated(context.Background(), event))

	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	assert.Equal(t, "arn:aws:sns:eu-west-1:123:quotes", awssdk.ToString(in.TopicArn))
	assert.Equal(t, EventQuoteCreated, awssdk.ToString(in.MessageAttributes["event_type"].StringValue))

	var body QuoteCreated
	require.NoError(t, json.Unmarshal([]byte(awssdk.ToString(in.Message)), &body))
	assert.Equal(t, event, body)
}

func TestSNSEventPublisher_Failure(t *testing.T) {
	api := &fakeSNS{err: stderrors.New("throttled")}
	pub := NewSNSEventPublisher(aws.NewSNSClientWithAPI(api, "arn"), logger.NewTestLogger(t))

	err := pub.PublishQuoteCreated(context.Background(), QuoteCreated{QuoteID: "q-2"})
	require.Error(t, err)

	var se *errors.StandardError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.ErrCodeEventPublishFailed, se.Code)
	assert.True(t, se.Retryable)
}
