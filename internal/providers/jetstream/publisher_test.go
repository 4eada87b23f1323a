package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/mocks"
	"github.com/feral-file/ff-agent-registry/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testConfig = jetstream.Config{
	URL:            "nats://localhost:4222",
	StreamName:     "REGISTRY_EVENTS",
	MaxReconnects:  3,
	ReconnectWait:  time.Second,
	ConnectionName: "registry-test",
}

func buildEvent() *domain.EntryEvent {
	return &domain.EntryEvent{
		Type:               domain.EntryEventRegistered,
		Network:            domain.NetworkPreview,
		RegistryType:       domain.RegistryTypeCardanoV1,
		RegistryIdentifier: "policy1",
		AssetIdentifier:    "asset1",
		EntryID:            42,
		Status:             domain.EntryStatusOnline,
		OccurredAt:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewPublisher(t *testing.T) {
	t.Run("connects and ensures the stream", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockNatsJS := mocks.NewMockNatsJetStream(ctrl)
		mockConn := mocks.NewMockNatsConn(ctrl)
		mockJS := mocks.NewMockJetStream(ctrl)

		mockNatsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(mockConn, mockJS, nil)
		mockJS.EXPECT().EnsureStream(gomock.Any(), "REGISTRY_EVENTS", []string{jetstream.SubjectWildcard}).Return(nil)

		pub, err := jetstream.NewPublisher(context.Background(), testConfig, mockNatsJS)
		require.NoError(t, err)
		require.NotNil(t, pub)
	})

	t.Run("connection failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockNatsJS := mocks.NewMockNatsJetStream(ctrl)
		mockNatsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(nil, nil, errors.New("no servers available"))

		pub, err := jetstream.NewPublisher(context.Background(), testConfig, mockNatsJS)
		assert.Error(t, err)
		assert.Nil(t, pub)
	})

	t.Run("stream failure closes the connection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockNatsJS := mocks.NewMockNatsJetStream(ctrl)
		mockConn := mocks.NewMockNatsConn(ctrl)
		mockJS := mocks.NewMockJetStream(ctrl)

		mockNatsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(mockConn, mockJS, nil)
		mockJS.EXPECT().EnsureStream(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("insufficient resources"))
		mockConn.EXPECT().Close()

		pub, err := jetstream.NewPublisher(context.Background(), testConfig, mockNatsJS)
		assert.Error(t, err)
		assert.Nil(t, pub)
	})
}

func TestPublisher_PublishEntryEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockNatsJS := mocks.NewMockNatsJetStream(ctrl)
	mockConn := mocks.NewMockNatsConn(ctrl)
	mockJS := mocks.NewMockJetStream(ctrl)

	mockNatsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(mockConn, mockJS, nil)
	mockJS.EXPECT().EnsureStream(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	pub, err := jetstream.NewPublisher(context.Background(), testConfig, mockNatsJS)
	require.NoError(t, err)

	t.Run("publishes on the network subject with a generated id", func(t *testing.T) {
		event := buildEvent()

		mockJS.EXPECT().
			Publish(gomock.Any(), "registry.preview.entry.registered", gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, subject string, data []byte, opts ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
				var decoded domain.EntryEvent
				require.NoError(t, json.Unmarshal(data, &decoded))
				assert.Equal(t, "asset1", decoded.AssetIdentifier)
				assert.EqualValues(t, 42, decoded.EntryID)
				assert.NotEmpty(t, decoded.ID)
				assert.Len(t, opts, 1)
				return &natsjs.PubAck{Stream: "REGISTRY_EVENTS", Sequence: 1}, nil
			})

		require.NoError(t, pub.PublishEntryEvent(context.Background(), event))
		assert.Len(t, event.ID, 26)
	})

	t.Run("invalid event is rejected before publishing", func(t *testing.T) {
		event := buildEvent()
		event.Status = domain.EntryStatusDeregistered

		assert.Error(t, pub.PublishEntryEvent(context.Background(), event))
	})

	t.Run("publish failure", func(t *testing.T) {
		mockJS.EXPECT().
			Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("nats: timeout"))

		assert.Error(t, pub.PublishEntryEvent(context.Background(), buildEvent()))
	})

	t.Run("close drains the connection", func(t *testing.T) {
		mockConn.EXPECT().Drain().Return(nil)
		pub.Close()
	})
}
