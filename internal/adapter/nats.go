package adapter

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EVENT_STREAM_MAX_AGE bounds how long entry events stay replayable
const EVENT_STREAM_MAX_AGE = 7 * 24 * time.Hour

// NatsConn is the part of *nats.Conn the publisher manages
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=NatsConn=MockNatsConn,JetStream=MockJetStream,NatsJetStream=MockNatsJetStream
type NatsConn interface {
	Drain() error
	Close()
	ConnectedUrl() string
}

// JetStream publishes entry events and provisions their stream
type JetStream interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
	EnsureStream(ctx context.Context, name string, subjects []string) error
}

// NatsJetStream dials NATS and opens a JetStream context on the connection
type NatsJetStream interface {
	Connect(url string, options ...nats.Option) (NatsConn, JetStream, error)
}

type natsDialer struct{}

func NewNatsJetStream() NatsJetStream {
	return natsDialer{}
}

func (natsDialer) Connect(url string, options ...nats.Option) (NatsConn, JetStream, error) {
	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return nc, eventStream{js: js}, nil
}

type eventStream struct {
	js jetstream.JetStream
}

func (s eventStream) Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	return s.js.Publish(ctx, subject, data, opts...)
}

// EnsureStream creates or updates a file-backed stream. The duplicate window lets
// JetStream drop re-published events that carry the same message id.
func (s eventStream) EnsureStream(ctx context.Context, name string, subjects []string) error {
	_, err := s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   subjects,
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     EVENT_STREAM_MAX_AGE,
		Duplicates: 2 * time.Minute,
	})
	return err
}
