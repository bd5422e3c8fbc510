package api

import (
	"fmt"
	"net/http"

	"notify-lab/domain/event"
)

// handleEvents serves one long-lived text-event stream per client. Each
// delivered event becomes one frame: an event-type line naming the variant,
// a data line with the JSON payload, and a blank line.
//
// The loop ends when the client disconnects or the server shuts down. On
// exit the receiver detaches; the user's channel stays registered for
// future connections.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	receiver := s.registry.Subscribe(userID)
	defer receiver.Close()
	s.log.Info("Stream opened", "user_id", userID)
	defer s.log.Info("Stream closed", "user_id", userID)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.shutdown:
			return
		case e := <-receiver.Events():
			payload, err := event.Marshal(e)
			if err != nil {
				s.log.Error("Failed to serialize event", "kind", e.Kind(), "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind(), payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
