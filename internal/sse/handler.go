package sse

import (
	"fmt"
	"net/http"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/rs/zerolog"
)

// EventsHandler streams the events of the post named by the ?post= query.
func EventsHandler(clients *SSEClients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := zerolog.Ctx(r.Context())

		postID := r.URL.Query().Get("post")
		if postID == "" {
			http.Error(w, "Post parameter required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set(config.HCType, "text/event-stream")
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Connection", "keep-alive")

		fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
		flusher.Flush()

		client := &Client{
			Msg:    make(chan string, 1),
			PostID: model.PostID(postID),
		}
		clients.Add(client)
		l.Debug().Str("post_id", postID).Msg("SSE client connected")

		defer func() {
			clients.Delete(client)
			l.Debug().Str("post_id", postID).Msg("SSE client disconnected")
		}()

		for {
			select {
			case msg := <-client.Msg:
				fmt.Fprintf(w, "data: %s\n\n", msg)
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}
