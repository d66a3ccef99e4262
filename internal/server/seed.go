package server

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/factday/fivefacts/internal/trivia"
)

// SeedDemo creates a demo admin and a challenge for today if no admin
// exists yet. Idempotent: does nothing once seeded.
func SeedDemo(ctx context.Context, logger *slog.Logger, store Store) error {
	if _, _, err := store.AdminByEmail(ctx, "admin@fivefacts.local"); err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := store.CreateAdmin(ctx, "admin@fivefacts.local", string(hash)); err != nil {
		return err
	}

	_, err = store.CreateChallenge(ctx, AdminChallengeRequest{
		Day:      trivia.DayKey(time.Now()),
		Language: defaultLanguage,
		Category: "science",
		Answer:   "Marie Curie",
		Decoys: []string{
			"Albert Einstein", "Rosalind Franklin", "Niels Bohr",
			"Lise Meitner", "Dmitri Mendeleev", "Ada Lovelace",
			"Louis Pasteur", "Dorothy Hodgkin", "Ernest Rutherford",
		},
		Facts: []trivia.Fact{
			{Type: "year", Content: "Born in 1867 in Warsaw.", Category: "science"},
			{Type: "achievement", Content: "First person to win Nobel Prizes in two different sciences.", Category: "science"},
			{Type: "detail", Content: "Coined the term 'radioactivity'.", Category: "science"},
			{Type: "detail", Content: "Her notebooks are still radioactive today.", Category: "science"},
			{Type: "legacy", Content: "Element 96 is named after her and her husband.", Category: "science"},
		},
	})
	if err != nil {
		return err
	}

	logger.Info("demo admin and challenge seeded")
	return nil
}
