package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Stream    bool   `json:"stream"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestRemote(url string) *RemoteClient {
	return NewRemoteClient(RemoteConfig{APIKey: "test-key", BaseURL: url}, zerolog.Nop())
}

func TestRemoteRequest(t *testing.T) {
	var seen chatRequest
	server := completionServer(t, http.StatusOK,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Lower the screen brightness."},"finish_reason":"stop"}]}`,
		&seen)

	answer, err := newTestRemote(server.URL).Request(context.Background(), "how do I save battery?")

	require.NoError(t, err)
	assert.Equal(t, "Lower the screen brightness.", answer)

	assert.Equal(t, DefaultRemoteModel, seen.Model)
	assert.Equal(t, DefaultRemoteMaxTokens, seen.MaxTokens)
	assert.False(t, seen.Stream)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, seen.Messages[0].Content)
	assert.Equal(t, "user", seen.Messages[1].Role)
	assert.Equal(t, "how do I save battery?", seen.Messages[1].Content)
}

func TestRemoteRequestSentinelIsReturnedVerbatim(t *testing.T) {
	server := completionServer(t, http.StatusOK,
		`{"choices":[{"index":0,"message":{"role":"assistant","content":"system_request"}}]}`, nil)

	answer, err := newTestRemote(server.URL).Request(context.Background(), "why are you slow?")

	require.NoError(t, err)
	assert.Equal(t, SystemRequest, answer)
}

func TestRemoteRequestFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, nil},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, nil},
		{"unparsable body", http.StatusOK, `not json`, nil},
		{"empty choices", http.StatusOK, `{"choices":[]}`, ErrEmptyChoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := completionServer(t, tt.status, tt.body, nil)

			_, err := newTestRemote(server.URL).Request(context.Background(), "hi")

			require.Error(t, err)
			var transportErr *TransportError
			assert.True(t, errors.As(err, &transportErr))
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestRemoteRequestUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestRemote(url).Request(context.Background(), "hi")

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}
