package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"platelog/logger"
	"platelog/repository"
)

// EntriesSSE streams snapshots of the nutrition log over Server-Sent Events:
// one snapshot on connect, then one after every insert or delete, until the
// client disconnects.
func EntriesSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// The watcher is cancelled automatically when the client goes away.
	snapshots := repository.Get().WatchAll(r.Context())
	logger.Info("SSE client connected")

	fmt.Fprintf(w, "event: connected\ndata: {\"status\": \"connected\"}\n\n")
	flusher.Flush()

	for entries := range snapshots {
		data, err := json.Marshal(entries)
		if err != nil {
			logger.Error("Failed to marshal entry snapshot", "error", err)
			continue
		}
		fmt.Fprintf(w, "event: entries\ndata: %s\n\n", data)
		flusher.Flush()
	}

	logger.Info("SSE client disconnected")
}
