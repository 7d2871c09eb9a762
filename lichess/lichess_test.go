package lichess

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", func(o *Options) { o.BaseURL = srv.URL })
}

func TestClientAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/account", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"drnykterstein","username":"DrNykterstein","title":"GM"}`))
	})

	account, err := client.Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "drnykterstein", account.ID)
	assert.Equal(t, "GM", account.Title)
}

func TestClientExportGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/game/export/abcd1234", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("moves"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abcd1234","rated":true,"variant":"standard","speed":"blitz","status":"mate","winner":"white","moves":"e4 e5 Nf3","players":{"white":{"user":{"id":"w","name":"White"},"rating":2850},"black":{"user":{"id":"b","name":"Black"},"rating":2800}}}`))
	})

	game, err := client.ExportGame(context.Background(), "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", game.ID)
	assert.Equal(t, []string{"e4", "e5", "Nf3"}, game.MoveList())
	assert.Equal(t, 2850, game.Players.White.Rating)
}

func TestClientExportGameEmptyID(t *testing.T) {
	client := NewClient("test-token")
	_, err := client.ExportGame(context.Background(), "")
	assert.Error(t, err)
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
		message   string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"error":"No such game"}`, retryable: false, message: "No such game"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "Too many requests", retryable: true, message: "Too many requests"},
		{name: "server error", status: http.StatusBadGateway, body: "", retryable: true, message: "no error details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ExportGame(context.Background(), "abcd1234")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.retryable, apiErr.Retryable())
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}
