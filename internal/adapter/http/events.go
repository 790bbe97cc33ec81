package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// handleEvents streams bus events as server-sent events. disaster_id takes a
// comma-separated list; without it the stream carries every event. The
// subscription ends when the client disconnects or the server shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("disaster_id"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	sub := s.deps.Events.Subscribe(ids...)
	defer s.deps.Events.Unsubscribe(sub)

	_ = rc.SetWriteDeadline(time.Time{})
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		s.logger.Warn("event stream does not support flushing", "error", err)
		return
	}
	s.logger.Debug("event stream opened", "disaster_ids", ids)

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("event stream closed", "disaster_ids", ids)
			return
		case <-s.closing:
			s.logger.Debug("event stream closed for shutdown", "disaster_ids", ids)
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warn("encode event failed", "error", err, "topic", ev.Topic)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, data)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
