package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scmsohel/epic-loot-bot/internal/infra/worker"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler serves POST /webhook/{secret}. The path secret must match; the
// secret-token header is checked only when Telegram sends one.
func (d *Dispatcher) WebhookHandler(secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !sameSecret(chi.URLParam(r, "secret"), secret) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if h := r.Header.Get(secretTokenHeader); h != "" && !sameSecret(h, secret) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&update); err != nil {
			d.log.Warn().Err(err).Msg("bad webhook payload")
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := d.Enqueue(update); err != nil {
			if errors.Is(err, worker.ErrQueueFull) {
				// Telegram redelivers on non-2xx.
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func sameSecret(got, want string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
