package moneyhero

import "sync"

// EventType identifies what happened to the player.
type EventType string

const (
	EventTransactionAdded    EventType = "transaction_added"
	EventTransactionDeleted  EventType = "transaction_deleted"
	EventLevelUp             EventType = "level_up"
	EventLevelDown           EventType = "level_down"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventReset               EventType = "reset"
)

// Event is published by the Engine after a committed change.
type Event struct {
	Type          EventType `json:"type"`
	Level         int       `json:"level,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	AchievementID string    `json:"achievementId,omitempty"`
}

// levelEvents reports a level change from before to after.
func levelEvents(before, after int) []Event {
	switch {
	case after > before:
		return []Event{{Type: EventLevelUp, Level: after}}
	case after < before:
		return []Event{{Type: EventLevelDown, Level: after}}
	}
	return nil
}

// subscribers is a set of event handlers.
type subscribers struct {
	mu     sync.RWMutex
	nextID int
	funcs  map[int]func(Event)
}

func (s *subscribers) add(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.funcs == nil {
		s.funcs = make(map[int]func(Event))
	}
	id := s.nextID
	s.nextID++
	s.funcs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.funcs, id)
	}
}

func (s *subscribers) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.RLock()
	funcs := make([]func(Event), 0, len(s.funcs))
	for _, fn := range s.funcs {
		funcs = append(funcs, fn)
	}
	s.mu.RUnlock()
	for _, ev := range events {
		for _, fn := range funcs {
			fn(ev)
		}
	}
}
