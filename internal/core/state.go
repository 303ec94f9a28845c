package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Rorical/PocketDoc/internal/models"
)

var (
	ErrTurnNotFound = errors.New("turn not found")
	ErrTurnComplete = errors.New("turn already complete")
)

// ChatState owns the conversation turns and the UI flags. Turns are kept in
// append order and only ever exposed as copies; a completed turn is never
// changed again.
type ChatState struct {
	mu    sync.RWMutex
	turns []models.Turn
	index map[string]int
	flags models.UIFlags
}

func NewChatState() *ChatState {
	return &ChatState{
		turns: make([]models.Turn, 0),
		index: make(map[string]int),
		flags: models.UIFlags{TextInputEnabled: true},
	}
}

func (cs *ChatState) appendLocked(t models.Turn) models.Turn {
	t.ID = uuid.NewString()
	cs.index[t.ID] = len(cs.turns)
	cs.turns = append(cs.turns, t)
	return t
}

// AddTurn appends an already complete turn.
func (cs *ChatState) AddTurn(author models.Author, text string) models.Turn {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.appendLocked(models.Turn{Author: author, Text: text, IsComplete: true})
}

// OpenTurn appends an empty, in-flight MODEL turn. A placeholder turn is
// shown as a loading indicator until content arrives.
func (cs *ChatState) OpenTurn(placeholder bool) models.Turn {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.appendLocked(models.Turn{Author: models.Model, IsPlaceholder: placeholder})
}

func (cs *ChatState) mutable(id string) (*models.Turn, error) {
	i, ok := cs.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTurnNotFound, id)
	}
	t := &cs.turns[i]
	if t.IsComplete {
		return nil, fmt.Errorf("%w: %s", ErrTurnComplete, id)
	}
	return t, nil
}

func (cs *ChatState) AppendToTurn(id, chunk string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	t, err := cs.mutable(id)
	if err != nil {
		return err
	}
	t.Text += chunk
	t.IsPlaceholder = false
	return nil
}

func (cs *ChatState) ReplaceTurnText(id, text string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	t, err := cs.mutable(id)
	if err != nil {
		return err
	}
	t.Text = text
	t.IsPlaceholder = false
	return nil
}

func (cs *ChatState) CompleteTurn(id string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	t, err := cs.mutable(id)
	if err != nil {
		return err
	}
	t.IsComplete = true
	t.IsPlaceholder = false
	return nil
}

// CompleteTurnWithText replaces the turn's text and completes it in one step.
func (cs *ChatState) CompleteTurnWithText(id, text string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	t, err := cs.mutable(id)
	if err != nil {
		return err
	}
	t.Text = text
	t.IsComplete = true
	t.IsPlaceholder = false
	return nil
}

// DiscardPlaceholder removes a turn that never received content. Any other
// turn is left alone and an error is returned.
func (cs *ChatState) DiscardPlaceholder(id string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	t, err := cs.mutable(id)
	if err != nil {
		return err
	}
	if !t.IsPlaceholder || t.Text != "" {
		return fmt.Errorf("turn %s has content", id)
	}

	i := cs.index[id]
	cs.turns = append(cs.turns[:i], cs.turns[i+1:]...)
	delete(cs.index, id)
	for j := i; j < len(cs.turns); j++ {
		cs.index[cs.turns[j].ID] = j
	}
	return nil
}

// CompleteInFlight completes every open turn, substituting text for turns
// that are still empty, and returns how many were closed.
func (cs *ChatState) CompleteInFlight(text string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	n := 0
	for i := range cs.turns {
		t := &cs.turns[i]
		if t.IsComplete {
			continue
		}
		if t.Text == "" {
			t.Text = text
		}
		t.IsComplete = true
		t.IsPlaceholder = false
		n++
	}
	return n
}

func (cs *ChatState) Turn(id string) (models.Turn, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	i, ok := cs.index[id]
	if !ok {
		return models.Turn{}, false
	}
	return cs.turns[i], true
}

// Turns returns the turns in append order.
func (cs *ChatState) Turns() []models.Turn {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	result := make([]models.Turn, len(cs.turns))
	copy(result, cs.turns)
	return result
}

// NewestFirst returns the turns in display order.
func (cs *ChatState) NewestFirst() []models.Turn {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	result := make([]models.Turn, len(cs.turns))
	for i, t := range cs.turns {
		result[len(cs.turns)-1-i] = t
	}
	return result
}

func (cs *ChatState) InFlight() []models.Turn {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var result []models.Turn
	for _, t := range cs.turns {
		if !t.IsComplete {
			result = append(result, t)
		}
	}
	return result
}

func (cs *ChatState) Flags() models.UIFlags {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.flags
}

func (cs *ChatState) SetGenerating(generating bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.flags.ResponseGenerating = generating
}

func (cs *ChatState) SetTextInput(enabled bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.flags.TextInputEnabled = enabled
}

func (cs *ChatState) SetOnline(online bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.flags.OnlineMode = online
}

// ToggleOnline flips online mode and returns the new value.
func (cs *ChatState) ToggleOnline() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.flags.OnlineMode = !cs.flags.OnlineMode
	return cs.flags.OnlineMode
}
