package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type VerifyRequest struct {
	Guess    string `json:"guess"`
	Language string `json:"language,omitempty"`
}

type VerifyResponse struct {
	IsCorrect bool `json:"isCorrect"`
}

// handleVerify checks a guess against the challenge answer. Idempotent and
// side-effect-free: the same guess can be verified any number of times.
func handleVerify(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Guess = strings.TrimSpace(req.Guess)
		if req.Guess == "" {
			writeError(w, http.StatusBadRequest, "guess is required")
			return
		}

		sec, err := store.Secrets(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "challenge not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		isCorrect := strings.EqualFold(req.Guess, strings.TrimSpace(sec.Answer))
		writeJSON(w, http.StatusOK, VerifyResponse{IsCorrect: isCorrect})
	}
}
