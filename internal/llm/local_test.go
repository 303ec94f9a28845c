package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, chunks []string, gap time.Duration) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)

		for i, chunk := range chunks {
			fmt.Fprintf(w, "data: {\"id\":\"c%d\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", i, chunk)
			if flusher != nil {
				flusher.Flush()
			}
			select {
			case <-r.Context().Done():
				return
			case <-time.After(gap):
			}
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(server.Close)
	return server
}

func collect(t *testing.T, ch <-chan Fragment) []Fragment {
	t.Helper()
	var out []Fragment
	timeout := time.After(5 * time.Second)
	for {
		select {
		case f := <-ch:
			out = append(out, f)
			if f.Done {
				return out
			}
		case <-timeout:
			t.Fatal("timed out waiting for fragments")
		}
	}
}

func TestLocalModelStreamsFragments(t *testing.T) {
	server := sseServer(t, []string{"Hel", "lo ", "world"}, 20*time.Millisecond)
	model := NewLocalModel(LocalConfig{BaseURL: server.URL}, zerolog.Nop())
	defer model.Close()

	require.NoError(t, model.Submit(context.Background(), "hi"))
	frags := collect(t, model.Fragments())

	var text strings.Builder
	for _, f := range frags {
		require.NoError(t, f.Err)
		text.WriteString(f.Text)
	}
	assert.Equal(t, "Hello world", text.String())

	last := frags[len(frags)-1]
	assert.True(t, last.Done)
	assert.Equal(t, "world", last.Text)
	for _, f := range frags[:len(frags)-1] {
		assert.False(t, f.Done)
	}
}

func TestLocalModelEmptyGeneration(t *testing.T) {
	server := sseServer(t, nil, 0)
	model := NewLocalModel(LocalConfig{BaseURL: server.URL}, zerolog.Nop())
	defer model.Close()

	require.NoError(t, model.Submit(context.Background(), "hi"))
	frags := collect(t, model.Fragments())

	assert.Equal(t, []Fragment{{Done: true}}, frags)
}

func TestLocalModelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"model not loaded"}}`))
	}))
	defer server.Close()

	model := NewLocalModel(LocalConfig{BaseURL: server.URL}, zerolog.Nop())
	defer model.Close()

	err := model.Submit(context.Background(), "hi")
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestLocalModelResubmitDiscardsPrevious(t *testing.T) {
	slow := sseServer(t, []string{"a", "b", "c", "d"}, 200*time.Millisecond)
	model := NewLocalModel(LocalConfig{BaseURL: slow.URL}, zerolog.Nop())
	defer model.Close()

	require.NoError(t, model.Submit(context.Background(), "first"))
	require.NoError(t, model.Submit(context.Background(), "second"))

	frags := collect(t, model.Fragments())
	var text strings.Builder
	for _, f := range frags {
		text.WriteString(f.Text)
	}
	assert.Equal(t, "abcd", text.String())
}

func TestLocalModelCancel(t *testing.T) {
	server := sseServer(t, []string{"a", "b", "c"}, 500*time.Millisecond)
	model := NewLocalModel(LocalConfig{BaseURL: server.URL}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, model.Submit(ctx, "hi"))
	cancel()

	done := make(chan struct{})
	go func() {
		model.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after cancellation")
	}
}

func TestLocalPrompt(t *testing.T) {
	p := LocalPrompt("why is my phone hot?")
	assert.True(t, strings.HasPrefix(p, "<start_of_turn>user\n"))
	assert.Contains(t, p, "Question:why is my phone hot?<end_of_turn>")
	assert.True(t, strings.HasSuffix(p, "<start_of_turn>model\n"))
}
