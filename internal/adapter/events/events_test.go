package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// MockChannel is a mock implementation of amqpChannel
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

var actor = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func testEvent() domain.Event {
	return domain.NewEvent(domain.EventTokensMinted, actor, 7, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), map[string]string{
		"uri": "ipfs://token",
	})
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", "estate.ledger", "topic", true, false, false, false, amqp.Table(nil)).Return(nil)

	var published amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "estate.ledger", "ledger.tokens_minted", false, false, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(5).(amqp.Publishing)
		}).
		Return(nil)

	publisher, err := newRabbitPublisher(ch, "estate.ledger", zap.NewNop())
	require.NoError(t, err)

	event := testEvent()
	publisher.Publish(context.Background(), event)

	ch.AssertExpectations(t)
	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)
	assert.Equal(t, event.ID.String(), published.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(published.Body, &body))
	assert.Equal(t, "TOKENS_MINTED", body["type"])
	assert.Equal(t, actor.Hex(), body["actor"])
	assert.Equal(t, "7", body["entity_id"])
	assert.Equal(t, "2026-02-01T10:00:00Z", body["occurred_at"])
	assert.Equal(t, map[string]any{"uri": "ipfs://token"}, body["attributes"])
}

func TestRabbitPublisher_PublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	publisher, err := newRabbitPublisher(ch, "estate.ledger", zap.New(core))
	require.NoError(t, err)

	publisher.Publish(context.Background(), testEvent())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to publish event", logs.All()[0].Message)
}

func TestNewRabbitPublisher_DeclareFailure(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access refused"))
	ch.On("Close").Return(nil)

	_, err := newRabbitPublisher(ch, "estate.ledger", zap.NewNop())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to declare exchange estate.ledger")
	ch.AssertCalled(t, "Close")
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "ledger.platform_fee_paid", RoutingKey(domain.EventPlatformFeePaid))
	assert.Equal(t, "ledger.burn_window_expired", RoutingKey(domain.EventBurnWindowExpired))
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewLogPublisher(zap.New(core))

	publisher.Publish(context.Background(), testEvent())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ledger event", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "TOKENS_MINTED", fields["type"])
	assert.Equal(t, uint64(7), fields["entity_id"])
	assert.Equal(t, "ipfs://token", fields["uri"])
}

func TestFanoutAndRecorder(t *testing.T) {
	first, second := NewRecorder(), NewRecorder()
	fanout := Fanout{first, second}

	fanout.Publish(context.Background(), testEvent())
	fanout.Publish(context.Background(), domain.NewEvent(domain.EventPaused, actor, 0, time.Now(), nil))

	assert.Len(t, first.Events(), 2)
	assert.Len(t, second.Events(), 2)
	assert.Len(t, first.OfType(domain.EventPaused), 1)
	assert.NotNil(t, first.OfType(domain.EventPaused)[0].Attributes)
	assert.Empty(t, first.OfType(domain.EventUnpaused))
}
