package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/cv-builder/internal/export"
)

// SSEWriter writes Server-Sent Events.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter prepares w for streaming.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one event with a JSON payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// progressHub fans export state transitions out to event stream subscribers.
type progressHub struct {
	mu   sync.Mutex
	subs map[string]map[chan export.State]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[string]map[chan export.State]struct{})}
}

func (h *progressHub) subscribe(key string) (<-chan export.State, func()) {
	ch := make(chan export.State, 8)
	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan export.State]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[key]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(h.subs, key)
				}
			}
		})
	}
}

// publish never blocks; slow subscribers miss intermediate states.
func (h *progressHub) publish(key string, state export.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[key] {
		select {
		case ch <- state:
		default:
		}
	}
}

func (h *progressHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, key)
	}
}

func (s *Server) observeExports() {
	prev := s.deps.Exports.OnState
	s.deps.Exports.OnState = func(key string, state export.State) {
		if prev != nil {
			prev(key, state)
		}
		s.progress.publish(key, state)
	}
}

// handleExportEvents streams the states of the caller's exports of one
// document until a terminal state or disconnect.
func (s *Server) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	key := exportKey(r, r.PathValue("documentId"))
	states, cancel := s.progress.subscribe(key)
	defer cancel()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			if err := sse.WriteEvent("state", map[string]string{"state": string(state)}); err != nil {
				return
			}
			if state == export.StateDone || state == export.StateFailed {
				return
			}
		}
	}
}
