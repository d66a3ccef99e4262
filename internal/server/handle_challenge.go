package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/factday/fivefacts/internal/trivia"
)

const defaultLanguage = "en"

// handleChallengeToday returns today's challenge: facts only, never the
// answer. Today is computed in the fixed reference timezone so every
// player's day rolls over at the same moment.
func handleChallengeToday(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := r.URL.Query().Get("lang")
		if lang == "" {
			lang = defaultLanguage
		}

		day := trivia.DayKey(time.Now())
		ch, err := store.ChallengeForDay(r.Context(), day, lang)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no challenge for today")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, ch)
	}
}
