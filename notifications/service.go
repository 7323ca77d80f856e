package notifications

import (
	"sync"
	"time"
)

// EventType represents the type of notification event
type EventType string

const (
	EventStagingChanged  EventType = "staging-changed"
	EventSequenceChanged EventType = "sequence-changed"
	EventBatchesChanged  EventType = "batches-changed"
	EventOverlayChanged  EventType = "overlay-changed"
	EventEpochBumped     EventType = "epoch-bumped"
	EventConnected       EventType = "connected"
)

// Event represents a notification event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Service manages SSE subscriptions and event broadcasting
type Service struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	closed      bool
}

var (
	instance *Service
	once     sync.Once
)

// GetService returns the singleton notification service
func GetService() *Service {
	once.Do(func() {
		instance = NewService()
	})
	return instance
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe creates a new subscription channel
// Returns the event channel and an unsubscribe function
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 10)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, exists := s.subscribers[ch]; exists {
			delete(s.subscribers, ch)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Notify broadcasts an event to all subscribers
func (s *Service) Notify(eventType EventType, data any) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// Shutdown closes all subscriber channels
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}
