package server

import (
	"errors"
	"math/rand"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/factday/fivefacts/internal/trivia"
)

type FinalFiveOptionsRequest struct {
	ExcludedGuesses []string `json:"excludedGuesses"`
	Language        string   `json:"language,omitempty"`
}

type FinalFiveOptionsResponse struct {
	Options []string `json:"options"`
}

type FinalFiveAnswerResponse struct {
	Answer string `json:"answer"`
}

// handleFinalFiveOptions builds the five multiple-choice options: the true
// answer plus four decoys, excluding everything the player already guessed
// wrong, shuffled so the answer position carries no signal.
func handleFinalFiveOptions(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FinalFiveOptionsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
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

		excluded := func(s string) bool {
			for _, g := range req.ExcludedGuesses {
				if strings.EqualFold(strings.TrimSpace(g), strings.TrimSpace(s)) {
					return true
				}
			}
			return false
		}

		options := []string{sec.Answer}
		for _, d := range sec.Decoys {
			if len(options) == trivia.FactCount {
				break
			}
			if excluded(d) || strings.EqualFold(d, sec.Answer) {
				continue
			}
			options = append(options, d)
		}
		if len(options) < trivia.FactCount {
			writeError(w, http.StatusInternalServerError, "not enough decoys for this challenge")
			return
		}

		rand.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		writeJSON(w, http.StatusOK, FinalFiveOptionsResponse{Options: options})
	}
}

// handleFinalFiveAnswer returns the authoritative answer. Only called by
// clients after the round is already decided.
func handleFinalFiveAnswer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sec, err := store.Secrets(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "challenge not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, FinalFiveAnswerResponse{Answer: sec.Answer})
	}
}
