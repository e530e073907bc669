package pubsub

// PubSubClient publishes change notifications and decodes received payloads.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
}

// Subscriber is implemented by publishers that can fan messages out to
// in-process listeners.
type Subscriber interface {
	Subscribe(buffer int) (<-chan Message, func())
}
