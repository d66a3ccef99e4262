package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/factday/fivefacts/internal/trivia"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) ChallengeForDay(ctx context.Context, day, language string) (trivia.Challenge, error) {
	var ch trivia.Challenge
	var factsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, day, language, category, facts
		FROM challenges
		WHERE day = ? AND language = ?
	`, day, language).Scan(&ch.ID, &ch.Day, &ch.Language, &ch.Category, &factsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return ch, ErrNotFound
	}
	if err != nil {
		return ch, err
	}
	if err := json.Unmarshal([]byte(factsJSON), &ch.Facts); err != nil {
		return ch, err
	}
	return ch, nil
}

func (s *SQLiteStore) Secrets(ctx context.Context, challengeID string) (challengeSecrets, error) {
	var sec challengeSecrets
	var decoysJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT answer, decoys FROM challenges WHERE id = ?
	`, challengeID).Scan(&sec.Answer, &decoysJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return sec, ErrNotFound
	}
	if err != nil {
		return sec, err
	}
	json.Unmarshal([]byte(decoysJSON), &sec.Decoys)
	return sec, nil
}

func (s *SQLiteStore) ListChallenges(ctx context.Context) ([]AdminChallengeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, day, language, category, answer, facts, created_at
		FROM challenges
		ORDER BY day DESC, language
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminChallengeSummary
	for rows.Next() {
		var c AdminChallengeSummary
		var factsJSON string
		if err := rows.Scan(&c.ID, &c.Day, &c.Language, &c.Category, &c.Answer, &factsJSON, &c.CreatedAt); err != nil {
			return nil, err
		}
		var facts []json.RawMessage
		json.Unmarshal([]byte(factsJSON), &facts)
		c.FactCount = len(facts)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateChallenge(ctx context.Context, req AdminChallengeRequest) (AdminChallengeDetail, error) {
	factsJSON, _ := json.Marshal(req.Facts)
	decoysJSON, _ := json.Marshal(req.Decoys)

	var id, createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO challenges (id, day, language, category, answer, decoys, facts)
		VALUES (lower(hex(randomblob(16))), ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`, req.Day, req.Language, req.Category, req.Answer, string(decoysJSON), string(factsJSON)).Scan(&id, &createdAt)
	if err != nil {
		return AdminChallengeDetail{}, err
	}

	return AdminChallengeDetail{
		ID:        id,
		Day:       req.Day,
		Language:  req.Language,
		Category:  req.Category,
		Answer:    req.Answer,
		Decoys:    req.Decoys,
		Facts:     req.Facts,
		CreatedAt: createdAt,
	}, nil
}

func (s *SQLiteStore) GetChallenge(ctx context.Context, id string) (AdminChallengeDetail, error) {
	var d AdminChallengeDetail
	var factsJSON, decoysJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, day, language, category, answer, decoys, facts, created_at
		FROM challenges WHERE id = ?
	`, id).Scan(&d.ID, &d.Day, &d.Language, &d.Category, &d.Answer, &decoysJSON, &factsJSON, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	json.Unmarshal([]byte(factsJSON), &d.Facts)
	json.Unmarshal([]byte(decoysJSON), &d.Decoys)
	if d.Facts == nil {
		d.Facts = []trivia.Fact{}
	}
	if d.Decoys == nil {
		d.Decoys = []string{}
	}
	return d, nil
}

func (s *SQLiteStore) UpdateChallenge(ctx context.Context, id string, req AdminChallengeRequest) (AdminChallengeDetail, error) {
	factsJSON, _ := json.Marshal(req.Facts)
	decoysJSON, _ := json.Marshal(req.Decoys)

	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		UPDATE challenges SET day = ?, language = ?, category = ?, answer = ?, decoys = ?, facts = ?
		WHERE id = ?
		RETURNING created_at
	`, req.Day, req.Language, req.Category, req.Answer, string(decoysJSON), string(factsJSON), id).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminChallengeDetail{}, ErrNotFound
	}
	if err != nil {
		return AdminChallengeDetail{}, err
	}

	return AdminChallengeDetail{
		ID:        id,
		Day:       req.Day,
		Language:  req.Language,
		Category:  req.Category,
		Answer:    req.Answer,
		Decoys:    req.Decoys,
		Facts:     req.Facts,
		CreatedAt: createdAt,
	}, nil
}

func (s *SQLiteStore) DeleteChallenge(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var adminID, passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return adminID, passwordHash, err
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admins (id, email, password_hash)
		VALUES (lower(hex(randomblob(16))), ?, ?)
		RETURNING id
	`, email, passwordHash).Scan(&id)
	return id, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (id, admin_id)
		VALUES (lower(hex(randomblob(16))), ?)
		RETURNING id
	`, adminID).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}
