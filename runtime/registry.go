package runtime

import (
	"sync"

	"global-chat/contract"
)

type Set map[string]struct{}

// Registry maps broadcast topics to their live subscribers.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]contract.EventSink // map subscriber -> Sink
	topicMembers map[string]Set                // map topic to subscribers
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[string]contract.EventSink),
		topicMembers: make(map[string]Set),
	}
}

// GetSinksForTopic resolves every subscriber of topic except the given one,
// so a publisher never receives its own message.
// Returns nil if the topic has no other subscriber.
func (r *Registry) GetSinksForTopic(topic string, except string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.topicMembers[topic]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for subscriberID := range members {
		if subscriberID == except {
			continue
		}
		if sink, exists := r.sessions[subscriberID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a subscriber's sink on a topic, creating the topic on the fly.
func (r *Registry) Subscribe(subscriberID string, topic string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[subscriberID] = sink

	if _, ok := r.topicMembers[topic]; !ok {
		r.topicMembers[topic] = make(Set)
	}
	r.topicMembers[topic][subscriberID] = struct{}{}
}

// Unsubscribe removes the subscriber and drops the topic once it is empty.
func (r *Registry) Unsubscribe(subscriberID string, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, subscriberID)

	if members, ok := r.topicMembers[topic]; ok {
		delete(members, subscriberID)

		if len(members) == 0 {
			delete(r.topicMembers, topic)
		}
	}
}
