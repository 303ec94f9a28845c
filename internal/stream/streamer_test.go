package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/PocketDoc/internal/llm"
)

var errComplete = errors.New("turn complete")

type turnState struct {
	Text        string
	Complete    bool
	Placeholder bool
}

// recordingSink keeps a single turn and records every state it passes through.
type recordingSink struct {
	mu       sync.Mutex
	turn     turnState
	states   []turnState
	onAppend func(n int)
	appends  int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{turn: turnState{Placeholder: true}}
}

func (s *recordingSink) AppendToTurn(id, chunk string) error {
	s.mu.Lock()
	if s.turn.Complete {
		s.mu.Unlock()
		return errComplete
	}
	s.turn.Text += chunk
	s.turn.Placeholder = false
	s.states = append(s.states, s.turn)
	s.appends++
	n, hook := s.appends, s.onAppend
	s.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return nil
}

func (s *recordingSink) ReplaceTurnText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn.Complete {
		return errComplete
	}
	s.turn.Text = text
	s.turn.Placeholder = false
	s.states = append(s.states, s.turn)
	return nil
}

func (s *recordingSink) CompleteTurn(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn.Complete {
		return errComplete
	}
	s.turn.Complete = true
	s.states = append(s.states, s.turn)
	return nil
}

func (s *recordingSink) snapshot() (turnState, []turnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn, append([]turnState(nil), s.states...)
}

func TestStreamRevealsEachCharacter(t *testing.T) {
	sink := newRecordingSink()
	s := New(sink, time.Millisecond, zerolog.Nop())

	require.NoError(t, s.Stream(context.Background(), "t1", "héllo"))

	final, states := sink.snapshot()
	require.Len(t, states, 6, "five appends plus completion")
	assert.Equal(t, "h", states[0].Text)
	assert.False(t, states[0].Placeholder)
	for _, st := range states[:5] {
		assert.False(t, st.Complete)
	}
	assert.Equal(t, "héllo", states[4].Text)
	assert.True(t, final.Complete)
	assert.Equal(t, "héllo", final.Text)
}

func TestStreamEmptyTextCompletesImmediately(t *testing.T) {
	sink := newRecordingSink()
	s := New(sink, time.Second, zerolog.Nop())

	require.NoError(t, s.Stream(context.Background(), "t1", ""))

	final, states := sink.snapshot()
	assert.Len(t, states, 1)
	assert.True(t, final.Complete)
	assert.Empty(t, final.Text)
}

func TestStreamNeverReentersCompletedTurn(t *testing.T) {
	sink := newRecordingSink()
	s := New(sink, 0, zerolog.Nop())

	require.NoError(t, s.Stream(context.Background(), "t1", "ok"))
	err := s.Stream(context.Background(), "t1", "again")

	assert.ErrorIs(t, err, errComplete)
	final, _ := sink.snapshot()
	assert.Equal(t, "ok", final.Text)
}

func TestStreamCancelKeepsPartialText(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := newRecordingSink()
	sink.onAppend = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	s := New(sink, 10*time.Millisecond, zerolog.Nop())

	err := s.Stream(ctx, "t1", "abcdef")

	assert.ErrorIs(t, err, context.Canceled)
	final, _ := sink.snapshot()
	assert.True(t, final.Complete)
	assert.Equal(t, "ab", final.Text)
}

func TestStreamCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := newRecordingSink()
	err := New(sink, 0, zerolog.Nop()).Stream(ctx, "t1", "abc")

	assert.ErrorIs(t, err, context.Canceled)
	final, _ := sink.snapshot()
	assert.True(t, final.Complete)
	assert.Equal(t, CancelledText, final.Text)
}

func TestRelay(t *testing.T) {
	tests := []struct {
		name      string
		fragments []llm.Fragment
		wantText  string
		wantCount int
		complete  bool
		wantErr   bool
	}{
		{
			name:      "first fragment replaces then appends",
			fragments: []llm.Fragment{{Text: "Close "}, {Text: "background "}, {Text: "apps.", Done: true}},
			wantText:  "Close background apps.",
			wantCount: 3,
			complete:  true,
		},
		{
			name:      "empty fragments are skipped",
			fragments: []llm.Fragment{{Text: ""}, {Text: "Hi"}, {Done: true}},
			wantText:  "Hi",
			wantCount: 1,
			complete:  true,
		},
		{
			name:      "failure leaves turn open",
			fragments: []llm.Fragment{{Text: "Par"}, {Done: true, Err: errors.New("engine crashed")}},
			wantText:  "Par",
			wantCount: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan llm.Fragment, len(tt.fragments))
			for _, f := range tt.fragments {
				ch <- f
			}

			sink := newRecordingSink()
			n, err := New(sink, 0, zerolog.Nop()).Relay(context.Background(), "t1", ch)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			final, _ := sink.snapshot()
			assert.Equal(t, tt.wantCount, n)
			assert.Equal(t, tt.wantText, final.Text)
			assert.Equal(t, tt.complete, final.Complete)
		})
	}
}

func TestRelayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan llm.Fragment)

	sink := newRecordingSink()
	done := make(chan error, 1)
	go func() {
		_, err := New(sink, 0, zerolog.Nop()).Relay(ctx, "t1", ch)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}

	final, _ := sink.snapshot()
	assert.True(t, final.Complete)
	assert.Equal(t, CancelledText, final.Text)
}
