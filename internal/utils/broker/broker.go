// broker/broker.go
package broker

import (
	"sync"
)

// Topics published by the local stores and the chat service.
const (
	TopicAuth     = "auth"
	TopicLanguage = "language"
	TopicSessions = "sessions"
)

// Event is a change notification. Value is empty when Key was removed.
type Event struct {
	Topic string
	Key   string
	Value string
}

type Broker struct {
	subscribers map[string][]chan Event
	mu          sync.RWMutex
	bufferSize  int
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan Event),
		bufferSize:  8,
	}
}

func (b *Broker) Subscribe(topic string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, b.bufferSize)
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if chans, ok := b.subscribers[topic]; ok {
		for i, c := range chans {
			if c == ch {
				b.subscribers[topic] = append(chans[:i], chans[i+1:]...)
				close(c)
				break
			}
		}
	}
}

// Publish delivers ev to every subscriber of ev.Topic. A subscriber whose buffer is full misses the
// event rather than stalling the publisher.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if chans, ok := b.subscribers[ev.Topic]; ok {
		for _, ch := range chans {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
