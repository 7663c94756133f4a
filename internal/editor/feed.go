package editor

import "sync"

// Feed fans edit events out to live subscribers, keyed by session id. The
// websocket handler subscribes so the admin UI sees mutations and upload
// completions as they happen.
type Feed struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		subs: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe returns a channel of events for one session and a cancel
// function. The channel is buffered; a subscriber that falls behind loses
// events rather than blocking the editor.
func (f *Feed) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	f.mu.Lock()
	if f.subs[sessionID] == nil {
		f.subs[sessionID] = make(map[chan Event]struct{})
	}
	f.subs[sessionID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if set, ok := f.subs[sessionID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(f.subs, sessionID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its session.
func (f *Feed) Publish(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subs[event.SessionID] {
		select {
		case ch <- event:
		default:
		}
	}
}
