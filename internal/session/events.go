package session

import (
	"sync"

	"github.com/factday/fivefacts/internal/trivia"
)

type EventType string

const (
	EventFactRevealed     EventType = "fact_revealed"
	EventCardClosed       EventType = "card_closed"
	EventGuessProcessing  EventType = "guess_processing"
	EventGuessResult      EventType = "guess_result"
	EventTimerTick        EventType = "timer_tick"
	EventFinalFivePending EventType = "final_five_pending"
	EventFinalFiveReady   EventType = "final_five_ready"
	EventOptionRevealed   EventType = "option_revealed"
	EventFinalFiveResult  EventType = "final_five_result"
	EventGameOver         EventType = "game_over"
	EventRecoverableError EventType = "recoverable_error"
)

// Event is the payload published to session subscribers.
type Event struct {
	Type        EventType      `json:"type"`
	FactIndex   int            `json:"factIndex,omitempty"`
	Guess       string         `json:"guess,omitempty"`
	IsCorrect   bool           `json:"isCorrect,omitempty"`
	Remaining   int            `json:"remaining,omitempty"`
	Option      string         `json:"option,omitempty"`
	Options     []string       `json:"options,omitempty"`
	Outcome     trivia.Outcome `json:"outcome,omitempty"`
	Answer      string         `json:"answer,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// Broker is an in-process pub/sub for session events. The machine publishes,
// the UI layer subscribes.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a channel that receives session events.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the subscriber set.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends an event to all subscribers.
func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
