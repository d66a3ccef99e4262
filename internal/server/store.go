package server

import (
	"context"
	"errors"

	"github.com/factday/fivefacts/internal/trivia"
)

var ErrNotFound = errors.New("not found")

type adminSession struct {
	AdminID string
	Email   string
}

var errNoAdminSession = errors.New("no valid admin session")

const adminCookieName = "admin_session"

// challengeSecrets is the server-side-only half of a challenge: the answer
// and the decoy pool for Final Five options. Never serialized to players.
type challengeSecrets struct {
	Answer string
	Decoys []string
}

// AdminChallengeRequest is the request body for creating or updating a challenge.
type AdminChallengeRequest struct {
	Day      string        `json:"day"`
	Language string        `json:"language"`
	Category string        `json:"category"`
	Answer   string        `json:"answer"`
	Decoys   []string      `json:"decoys"`
	Facts    []trivia.Fact `json:"facts"`
}

// AdminChallengeSummary is one row of the admin challenge list.
type AdminChallengeSummary struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	Language  string `json:"language"`
	Category  string `json:"category"`
	Answer    string `json:"answer"`
	FactCount int    `json:"factCount"`
	CreatedAt string `json:"createdAt"`
}

// AdminChallengeDetail is the full admin view of a challenge.
type AdminChallengeDetail struct {
	ID        string        `json:"id"`
	Day       string        `json:"day"`
	Language  string        `json:"language"`
	Category  string        `json:"category"`
	Answer    string        `json:"answer"`
	Decoys    []string      `json:"decoys"`
	Facts     []trivia.Fact `json:"facts"`
	CreatedAt string        `json:"createdAt"`
}

type Store interface {
	ChallengeForDay(ctx context.Context, day, language string) (trivia.Challenge, error)
	Secrets(ctx context.Context, challengeID string) (challengeSecrets, error)

	ListChallenges(ctx context.Context) ([]AdminChallengeSummary, error)
	CreateChallenge(ctx context.Context, req AdminChallengeRequest) (AdminChallengeDetail, error)
	GetChallenge(ctx context.Context, id string) (AdminChallengeDetail, error)
	UpdateChallenge(ctx context.Context, id string, req AdminChallengeRequest) (AdminChallengeDetail, error)
	DeleteChallenge(ctx context.Context, id string) error

	AdminByEmail(ctx context.Context, email string) (adminID, passwordHash string, err error)
	CreateAdmin(ctx context.Context, email, passwordHash string) (string, error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
}
