package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
)

func statsHandler(statsUC StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := statsUC.Counts(r.Context())
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

type broadcastRequest struct {
	Text string `json:"text"`
}

// broadcastHandler blocks until every user has been tried.
func broadcastHandler(broadcastUC BroadcastUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req broadcastRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		res, err := broadcastUC.Broadcast(r.Context(), req.Text)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyBroadcast) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to broadcast", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
