// Command play runs the FiveFacts session engine in a terminal against a
// running oracle server. It exists for end-to-end play and debugging; the
// real game UI lives elsewhere.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/factday/fivefacts/internal/config"
	"github.com/factday/fivefacts/internal/database"
	"github.com/factday/fivefacts/internal/oracle"
	"github.com/factday/fivefacts/internal/persist"
	"github.com/factday/fivefacts/internal/session"
	"github.com/factday/fivefacts/internal/trivia"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.LoadPlay()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	profileID, err := loadProfile(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}

	db, err := database.Open(ctx, filepath.Join(cfg.DataDir, "play.db"))
	if err != nil {
		return fmt.Errorf("opening local database: %w", err)
	}
	defer db.Close()

	gateway, err := persist.NewGateway(ctx, db, logger)
	if err != nil {
		return err
	}
	tracker := persist.NewTracker(db)

	client := oracle.NewHTTPClient(cfg.OracleURL, oracle.DefaultPolicy)

	challenge, err := client.FetchChallenge(ctx, cfg.Language)
	if err != nil {
		return fmt.Errorf("fetching today's challenge: %w", err)
	}

	day := trivia.DayKey(time.Now())
	machine, err := gateway.Restore(ctx, profileID, day, session.Config{
		Challenge:  challenge,
		Language:   cfg.Language,
		Oracle:     client,
		Logger:     logger,
		Checkpoint: gateway.Checkpoint(profileID),
		OnComplete: func(outcome trivia.Outcome, data trivia.TodayGameData) {
			if !outcome.Win() {
				return
			}
			if _, err := tracker.RecordCompletion(context.Background(), profileID, time.Now()); err != nil {
				logger.Error("recording streak", "error", err)
			}
		},
	})
	if err != nil {
		return err
	}
	defer machine.Teardown()

	fmt.Fprintf(stdout, "FiveFacts — %s (%s)\n", challenge.Category, day)
	fmt.Fprintln(stdout, "commands: reveal N | close N | guess TEXT | pass | pick TEXT | retry | state | quit")

	g, gctx := errgroup.WithContext(ctx)

	events := machine.Events().Subscribe()
	defer machine.Events().Unsubscribe(events)

	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				machine.Tick()
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				render(stdout, machine, ev)
				if ev.Type == session.EventGameOver {
					rec, _ := tracker.Record(context.Background(), profileID)
					fmt.Fprintf(stdout, "streak: %d\n", rec.CurrentStreak)
					return context.Canceled
				}
			}
		}
	})

	g.Go(func() error {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if gctx.Err() != nil {
				return nil
			}
			handle(gctx, stdout, machine, scanner.Text())
		}
		return scanner.Err()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func handle(ctx context.Context, stdout io.Writer, m *session.Machine, line string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "reveal":
		if n, err := strconv.Atoi(arg); err == nil {
			m.RevealFact(n)
		}
	case "close":
		if n, err := strconv.Atoi(arg); err == nil {
			m.CloseCard(n)
		}
	case "guess":
		if err := m.SubmitGuess(ctx, arg); err != nil {
			fmt.Fprintf(stdout, "! %v\n", err)
		}
	case "pass":
		m.Pass()
	case "pick":
		if err := m.SelectFinalFiveOption(ctx, arg); err != nil {
			fmt.Fprintf(stdout, "! %v\n", err)
		}
	case "retry":
		m.RetryFinalFive(ctx)
		if err := m.RetryAnswerFetch(ctx); err != nil {
			fmt.Fprintf(stdout, "! %v\n", err)
		}
	case "state":
		v := m.View()
		fmt.Fprintf(stdout, "revealed=%v wrong=%d remaining=%ds reveal=%t guess=%t\n",
			v.Revealed, v.WrongGuesses, v.Remaining, v.CanReveal, v.CanGuess)
	case "quit":
		os.Exit(0)
	}
}

func render(stdout io.Writer, m *session.Machine, ev session.Event) {
	switch ev.Type {
	case session.EventFactRevealed:
		v := m.View()
		if ev.FactIndex < len(v.Challenge.Facts) {
			fmt.Fprintf(stdout, "fact %d: %s\n", ev.FactIndex, v.Challenge.Facts[ev.FactIndex].Content)
		}
	case session.EventGuessResult:
		if ev.IsCorrect {
			fmt.Fprintln(stdout, "correct!")
		} else {
			fmt.Fprintln(stdout, "wrong")
		}
	case session.EventFinalFivePending:
		fmt.Fprintln(stdout, "the Final Five is coming...")
	case session.EventOptionRevealed:
		fmt.Fprintf(stdout, "option: %s\n", ev.Option)
	case session.EventFinalFiveResult:
		if ev.Answer != "" {
			fmt.Fprintf(stdout, "the answer was: %s\n", ev.Answer)
		}
	case session.EventGameOver:
		fmt.Fprintf(stdout, "game over: %s\n", ev.Outcome)
	case session.EventRecoverableError:
		fmt.Fprintf(stdout, "! %s (type 'retry')\n", ev.Message)
	}
}

// loadProfile reads the persistent profile ID, minting one on first run.
func loadProfile(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dataDir, "profile")
	if b, err := os.ReadFile(path); err == nil && len(b) > 0 {
		return strings.TrimSpace(string(b)), nil
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id), 0o644); err != nil {
		return "", err
	}
	return id, nil
}
