package events

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StreamHandler serves the change feed as server-sent events. Each
// event is named "<collection>.<type>" with the full Event as data.
func StreamHandler(bus *Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		ch, cancel := bus.Subscribe(64)
		defer cancel()

		for {
			select {
			case <-r.Context().Done():
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				b, err := json.Marshal(e)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s.%s\ndata: %s\n\n", e.Collection, e.Type, b)
				flusher.Flush()
			}
		}
	}
}
