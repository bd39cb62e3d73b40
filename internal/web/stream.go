package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrader/internal/events"
)

var heartbeatInterval = 30 * time.Second

// handleStream pushes every tick, trade and reset as an SSE event.
// The first event is a "state" event carrying the current snapshot.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "event stream not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch := s.Events.Subscribe()
	defer s.Events.Unsubscribe(ch)

	if err := writeEvent(w, "state", s.state(s.Engine.Snapshot())); err != nil {
		s.logger.Warn("event stream initial write", zap.Error(err))
		return
	}
	flusher.Flush()

	// send a comment heartbeat so proxies keep connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(w, string(e.Type), s.streamPayload(e)); err != nil {
				s.logger.Warn("event stream write", zap.String("type", string(e.Type)), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

type streamEvent struct {
	events.Event
	State stateResponse `json:"state"`
}

func (s *Server) streamPayload(e events.Event) streamEvent {
	return streamEvent{Event: e, State: s.state(e.Snapshot)}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", name); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
