package pubsub

import (
	"context"
	"time"

	gpubsub "cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

var _ PubSubClient = (*GCPClient)(nil)

// GCPClient publishes change notifications to a Google Cloud Pub/Sub topic.
// It is only used as an optional sink behind Forward.
type GCPClient struct {
	client *gpubsub.Client
	topic  *gpubsub.Topic
}

// NewGCP connects to projectID and publishes to topicID.
func NewGCP(ctx context.Context, projectID, topicID string) (*GCPClient, error) {
	c, err := gpubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &GCPClient{
		client: c,
		topic:  c.Topic(topicID),
	}, nil
}

func (c *GCPClient) SendMessage(topic EventType, data any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	result := c.topic.Publish(ctx, &gpubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event_type": string(topic)},
	})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Debug("SendMessage", "serverID", serverID, "topic", topic)
	return nil
}

func (c *GCPClient) ProcessMessage(data []byte, returnValue any) error {
	return Decode(data, returnValue)
}

// Close flushes pending publishes and releases the client.
func (c *GCPClient) Close() error {
	c.topic.Stop()
	return c.client.Close()
}
