package engagement

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/infrastructure/messaging/kafka"
	"github.com/ben-daghir/hercap/pkg/errors"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, msg *kafka.ProducerMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func TestEvent_Validate(t *testing.T) {
	assert.NoError(t, Event{Type: EventCompanySelected, CompanyName: "Acme"}.Validate())
	assert.NoError(t, Event{Type: EventCategorySelected, Category: "AI"}.Validate())

	for _, e := range []Event{
		{Type: EventCompanySelected},
		{Type: EventCategorySelected},
		{Type: "hover"},
	} {
		err := e.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeEventInvalid))
	}
}

func TestEvent_Board(t *testing.T) {
	b, m := Event{Type: EventCompanySelected, CompanyName: "Acme"}.Board()
	assert.Equal(t, BoardCompanies, b)
	assert.Equal(t, "Acme", m)

	b, m = Event{Type: EventCategorySelected, Category: "AI"}.Board()
	assert.Equal(t, BoardCategories, b)
	assert.Equal(t, "AI", m)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := new(MockProducer)
	var sent *kafka.ProducerMessage
	producer.On("Publish", mock.Anything, mock.AnythingOfType("*kafka.ProducerMessage")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*kafka.ProducerMessage) }).
		Return(nil)

	p := NewKafkaPublisher(producer, "", "hercap-test", nil, nil)
	err := p.Publish(context.Background(), Event{
		Type: EventCategorySelected, View: "sector", SessionID: "s-1", Category: "Climate",
	})
	require.NoError(t, err)
	producer.AssertExpectations(t)

	require.NotNil(t, sent)
	assert.Equal(t, kafka.TopicPortfolioEngagement, sent.Topic)
	assert.Equal(t, []byte("Climate"), sent.Key)
	assert.Equal(t, string(EventCategorySelected), sent.Headers["event_type"])

	env, err := kafka.MessageToEventEnvelope(&kafka.Message{Value: sent.Value})
	require.NoError(t, err)
	assert.Equal(t, "s-1", env.Metadata["session_id"])
	var decoded Event
	require.NoError(t, env.DecodePayload(&decoded))
	assert.Equal(t, "Climate", decoded.Category)
	assert.WithinDuration(t, time.Now(), decoded.OccurredAt, time.Minute)
}

func TestKafkaPublisher_Invalid(t *testing.T) {
	producer := new(MockProducer)
	p := NewKafkaPublisher(producer, "t", "src", nil, nil)
	err := p.Publish(context.Background(), Event{Type: EventCompanySelected})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEventInvalid))
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestKafkaPublisher_ProducerError(t *testing.T) {
	producer := new(MockProducer)
	producer.On("Publish", mock.Anything, mock.Anything).Return(stderrors.New("broker down"))
	p := NewKafkaPublisher(producer, "t", "src", nil, nil)
	err := p.Publish(context.Background(), Event{Type: EventCompanySelected, CompanyName: "Acme"})
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))

	called := false
	p = PublisherFunc(func(ctx context.Context, e Event) error { called = true; return nil })
	require.NoError(t, p.Publish(context.Background(), Event{}))
	assert.True(t, called)
}

//Personal.AI order the ending
