package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/factday/fivefacts/internal/trivia"
)

// HTTPClient talks to the verification oracle API over plain JSON HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	policy  RetryPolicy
}

func NewHTTPClient(baseURL string, policy RetryPolicy) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		policy:  policy,
	}
}

func (c *HTTPClient) FetchChallenge(ctx context.Context, language string) (trivia.Challenge, error) {
	var ch trivia.Challenge
	path := "/api/challenge/today?lang=" + url.QueryEscape(language)
	// Challenge fetch is fatal on failure: single attempt, no auto-retry.
	err := NoRetry.Do(ctx, func(ctx context.Context) error {
		return c.get(ctx, path, &ch)
	})
	return ch, err
}

func (c *HTTPClient) VerifyGuess(ctx context.Context, challengeID, guess, language string) (bool, error) {
	req := struct {
		Guess    string `json:"guess"`
		Language string `json:"language,omitempty"`
	}{Guess: guess, Language: language}

	var resp struct {
		IsCorrect bool `json:"isCorrect"`
	}
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		return c.post(ctx, "/api/challenge/"+url.PathEscape(challengeID)+"/verify", req, &resp)
	})
	return resp.IsCorrect, err
}

func (c *HTTPClient) FinalFiveOptions(ctx context.Context, challengeID string, excludedGuesses []string, language string) ([]string, error) {
	req := struct {
		ExcludedGuesses []string `json:"excludedGuesses"`
		Language        string   `json:"language,omitempty"`
	}{ExcludedGuesses: excludedGuesses, Language: language}

	var resp struct {
		Options []string `json:"options"`
	}
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		return c.post(ctx, "/api/challenge/"+url.PathEscape(challengeID)+"/final-five/options", req, &resp)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Options) != trivia.FactCount {
		return nil, fmt.Errorf("oracle returned %d options, want %d", len(resp.Options), trivia.FactCount)
	}
	return resp.Options, nil
}

func (c *HTTPClient) FinalFiveAnswer(ctx context.Context, challengeID, language string) (string, error) {
	var resp struct {
		Answer string `json:"answer"`
	}
	path := "/api/challenge/" + url.PathEscape(challengeID) + "/final-five/answer?lang=" + url.QueryEscape(language)
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		return c.get(ctx, path, &resp)
	})
	return resp.Answer, err
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return &NetworkError{Op: req.Method + " " + req.URL.Path,
			Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	return nil
}
