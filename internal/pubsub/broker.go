package pubsub

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ PubSubClient = (*Broker)(nil)
	_ Subscriber   = (*Broker)(nil)
)

// Broker fans change notifications out to in-process subscribers. Sends never
// block: a subscriber whose buffer is full misses the message.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan Message
	nextID int
	closed bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Message)}
}

// SendMessage encodes data with msgpack and delivers it to every subscriber.
func (b *Broker) SendMessage(topic EventType, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err, "topic", topic)
		return err
	}
	msg := Message{Topic: topic, Data: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- msg:
		default:
			log.Warn("Dropping message for slow subscriber", "subscriber", id, "topic", topic)
		}
	}
	log.Debug("SendMessage", "topic", topic, "subscribers", len(b.subs))
	return nil
}

// ProcessMessage decodes a payload produced by SendMessage.
func (b *Broker) ProcessMessage(data []byte, returnValue any) error {
	return Decode(data, returnValue)
}

// Subscribe registers a listener. The returned cancel func unregisters it and
// closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe(buffer int) (<-chan Message, func()) {
	ch := make(chan Message, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Close unregisters every subscriber and closes their channels.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	b.closed = true
}

// Decode unmarshals a msgpack payload into returnValue.
func Decode(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}

// Forward relays every change read from msgs to sink until msgs is closed or
// ctx is done. Failed sends are logged and skipped.
func Forward(ctx context.Context, msgs <-chan Message, sink PubSubClient) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var change Change
			if err := Decode(msg.Data, &change); err != nil {
				continue
			}
			if err := sink.SendMessage(msg.Topic, change); err != nil {
				log.Error("Failed to forward change", "error", err, "topic", msg.Topic, "changeID", change.ID)
			}
		}
	}
}
