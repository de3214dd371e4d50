package wshub

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Subscriber receives payloads for topics it subscribed to. Push must
// not block; it reports true once the subscriber is gone so the hub
// can drop it.
type Subscriber interface {
	Push(topic string, payload []byte) (closed bool)
}

// Hub is the in-process topic fan-out. It implements the same
// Publish(topic, payload) contract as the external transports, with
// websocket clients as the subscribers.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[Subscriber]bool
	logger zerolog.Logger
}

func NewHub() *Hub {
	h := &Hub{}
	h.topics = make(map[string]map[Subscriber]bool)
	h.logger = log.With().Str("module", "wshub").Logger()
	return h
}

func (h *Hub) Subscribe(topic string, sub Subscriber) {
	h.mu.Lock()
	list, ok := h.topics[topic]
	if !ok {
		list = make(map[Subscriber]bool)
		h.topics[topic] = list
	}
	list[sub] = true
	h.mu.Unlock()
	h.logger.Debug().Str("topic", topic).Msg("subscribed")
}

func (h *Hub) Unsubscribe(topic string, sub Subscriber) {
	h.mu.Lock()
	list, ok := h.topics[topic]
	if ok {
		delete(list, sub)
		if len(list) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()
}

// Drop removes the subscriber from every topic. Called when a client
// disconnects so it does not linger on topics that never publish again.
func (h *Hub) Drop(sub Subscriber) {
	h.mu.Lock()
	for topic, list := range h.topics {
		if list[sub] {
			delete(list, sub)
			if len(list) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	h.mu.Unlock()
}

// Publish delivers to exactly the subscribers of this topic, dropping
// any that report closed. Delivery is best effort and never returns an
// error: a slow or dead dashboard must not fail the pipeline.
func (h *Hub) Publish(topic string, payload []byte) error {
	h.mu.Lock()
	list := h.topics[topic]
	for sub := range list {
		if sub.Push(topic, payload) {
			delete(list, sub)
		}
	}
	if len(list) == 0 {
		delete(h.topics, topic)
	}
	h.mu.Unlock()
	return nil
}

// Subscribers reports the current subscriber count for a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
