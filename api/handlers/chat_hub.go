package handlers

import (
	"sync"

	"github.com/pranaou2005/Wheelhub-backend/models"
)

// Chat event types pushed to live subscribers
const (
	ChatEventMessage   = "message"
	ChatEventImportant = "important"
)

// subscriberBuffer is how many events a subscriber may lag behind before it is dropped
const subscriberBuffer = 16

// ChatEvent is a single update pushed over a chat websocket
type ChatEvent struct {
	Type    string         `json:"type"`
	ChatID  string         `json:"chatId"`
	Message models.Message `json:"message"`
}

// ChatHub fans chat events out to the websocket subscribers of each chat
type ChatHub struct {
	mu   sync.Mutex
	subs map[string]map[chan ChatEvent]struct{}
}

// NewChatHub returns an empty hub
func NewChatHub() *ChatHub {
	return &ChatHub{subs: make(map[string]map[chan ChatEvent]struct{})}
}

// Subscribe registers a subscriber for chatID. The returned channel is closed when the
// subscriber is dropped or cancel is called.
func (h *ChatHub) Subscribe(chatID string) (<-chan ChatEvent, func()) {
	ch := make(chan ChatEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subs[chatID] == nil {
		h.subs[chatID] = make(map[chan ChatEvent]struct{})
	}
	h.subs[chatID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			h.remove(chatID, ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Broadcast delivers ev to every subscriber of chatID without blocking. Subscribers whose
// buffer is full are dropped.
func (h *ChatHub) Broadcast(chatID string, ev ChatEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[chatID] {
		select {
		case ch <- ev:
		default:
			h.remove(chatID, ch)
		}
	}
}

// CloseChat drops every subscriber of chatID
func (h *ChatHub) CloseChat(chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[chatID] {
		h.remove(chatID, ch)
	}
}

// Subscribers returns the number of live subscribers of chatID
func (h *ChatHub) Subscribers(chatID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[chatID])
}

// remove must be called with mu held
func (h *ChatHub) remove(chatID string, ch chan ChatEvent) {
	set, ok := h.subs[chatID]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	close(ch)
	if len(set) == 0 {
		delete(h.subs, chatID)
	}
}
