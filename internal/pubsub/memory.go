package pubsub

import (
	"sync"

	"github.com/keystone-rf/p25ctrl/internal/config"
)

func makeInMemoryPubSub(_ *config.Config) (PubSub, error) {
	return &inMemoryPubSub{
		topics: make(map[string][]chan []byte),
	}, nil
}

type inMemoryPubSub struct {
	mu     sync.Mutex
	topics map[string][]chan []byte
}

func (ps *inMemoryPubSub) Publish(topic string, message []byte) error {
	ps.mu.Lock()
	subs := append([]chan []byte(nil), ps.topics[topic]...)
	ps.mu.Unlock()
	for _, ch := range subs {
		ch <- message
	}
	return nil
}

func (ps *inMemoryPubSub) Subscribe(topic string) Subscription {
	ch := make(chan []byte, 16)
	ps.mu.Lock()
	ps.topics[topic] = append(ps.topics[topic], ch)
	ps.mu.Unlock()
	return &inMemorySubscription{ps: ps, topic: topic, ch: ch}
}

func (ps *inMemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, chs := range ps.topics {
		for _, ch := range chs {
			close(ch)
		}
	}
	ps.topics = make(map[string][]chan []byte)
	return nil
}

type inMemorySubscription struct {
	ps    *inMemoryPubSub
	topic string
	ch    chan []byte
}

func (s *inMemorySubscription) Close() error {
	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()
	subs := s.ps.topics[s.topic]
	for i, ch := range subs {
		if ch == s.ch {
			s.ps.topics[s.topic] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	return nil
}

func (s *inMemorySubscription) Channel() <-chan []byte {
	return s.ch
}
