package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/factday/fivefacts/internal/trivia"
)

// Tracker keeps the day-granularity completion history. It is decoupled
// from the intra-session machine: the only coupling is the session's
// completion notification.
type Tracker struct {
	db *sql.DB
}

func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// Record returns the profile's current streak record.
func (t *Tracker) Record(ctx context.Context, profileID string) (trivia.StreakRecord, error) {
	var rec trivia.StreakRecord
	var weekly string
	err := t.db.QueryRowContext(ctx, `
		SELECT current_streak, weekly, last_completion_day FROM streaks WHERE profile_id = ?
	`, profileID).Scan(&rec.CurrentStreak, &weekly, &rec.LastCompletionDay)
	if errors.Is(err, sql.ErrNoRows) {
		return trivia.StreakRecord{}, nil
	}
	if err != nil {
		return trivia.StreakRecord{}, err
	}
	var ring [7]bool
	if err := json.Unmarshal([]byte(weekly), &ring); err == nil {
		rec.WeeklyCompletions = ring
	}
	return rec, nil
}

// RecordCompletion marks today complete. Consecutive days extend the
// streak, a gap resets it to 1, and recording the same day twice is
// idempotent. The weekly ring resets when the reference-timezone week
// rolls over.
func (t *Tracker) RecordCompletion(ctx context.Context, profileID string, now time.Time) (trivia.StreakRecord, error) {
	day := trivia.DayKey(now)
	week := trivia.WeekStart(now)

	var rec trivia.StreakRecord
	var weekly, lastWeek string
	err := t.db.QueryRowContext(ctx, `
		SELECT current_streak, weekly, week_start, last_completion_day FROM streaks WHERE profile_id = ?
	`, profileID).Scan(&rec.CurrentStreak, &weekly, &lastWeek, &rec.LastCompletionDay)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First ever completion.
	case err != nil:
		return trivia.StreakRecord{}, err
	default:
		if rec.LastCompletionDay == day {
			var ring [7]bool
			json.Unmarshal([]byte(weekly), &ring)
			rec.WeeklyCompletions = ring
			return rec, nil
		}
		if lastWeek == week {
			json.Unmarshal([]byte(weekly), &rec.WeeklyCompletions)
		}
	}

	if rec.LastCompletionDay != "" && trivia.NextDay(rec.LastCompletionDay) == day {
		rec.CurrentStreak++
	} else {
		rec.CurrentStreak = 1
	}
	rec.LastCompletionDay = day
	rec.WeeklyCompletions[trivia.Weekday(now)] = true

	ring, _ := json.Marshal(rec.WeeklyCompletions)
	_, err = t.db.ExecContext(ctx, `
		INSERT INTO streaks (profile_id, current_streak, weekly, week_start, last_completion_day)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (profile_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			weekly = excluded.weekly,
			week_start = excluded.week_start,
			last_completion_day = excluded.last_completion_day
	`, profileID, rec.CurrentStreak, string(ring), week, day)
	if err != nil {
		return trivia.StreakRecord{}, err
	}
	return rec, nil
}
