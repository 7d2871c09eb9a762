package lichess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public Lichess API endpoint.
const DefaultBaseURL = "https://lichess.org"

// APIError carries the HTTP status of a failed Lichess call.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("lichess api error (%d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether an immediate retry may succeed: rate limiting and
// server-side failures are transient, everything else is not.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Account is the authenticated user profile.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Title    string `json:"title,omitempty"`
}

// Player is one side of an exported game.
type Player struct {
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Rating int `json:"rating"`
}

// Game is a single exported game with its move list.
type Game struct {
	ID      string `json:"id"`
	Rated   bool   `json:"rated"`
	Variant string `json:"variant"`
	Speed   string `json:"speed"`
	Status  string `json:"status"`
	Winner  string `json:"winner,omitempty"`
	Moves   string `json:"moves"`
	PGN     string `json:"pgn,omitempty"`
	Players struct {
		White Player `json:"white"`
		Black Player `json:"black"`
	} `json:"players"`
}

// MoveList splits the space separated move string.
func (g *Game) MoveList() []string { return strings.Fields(g.Moves) }

// Options configures the Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client is a token-authenticated Lichess API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given personal access token.
func NewClient(token string, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL: DefaultBaseURL,
		Timeout: 15 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// Account returns the profile behind the configured token.
func (c *Client) Account(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.get(ctx, "/api/account", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ExportGame fetches one finished game including its move list.
func (c *Client) ExportGame(ctx context.Context, gameID string) (*Game, error) {
	if gameID == "" {
		return nil, fmt.Errorf("game id must not be empty")
	}
	var game Game
	path := fmt.Sprintf("/game/export/%s?moves=true&pgnInJson=true", gameID)
	if err := c.get(ctx, path, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lichess request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode lichess response: %w", err)
	}
	return nil
}

// readErrorMessage pulls the error field out of a failure body, falling back
// to the raw text.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no error details"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
