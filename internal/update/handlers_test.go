package update

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/PocketDoc/internal/eventbus"
	"github.com/Rorical/PocketDoc/internal/models"
)

func newModel() *models.AppModel {
	input := textinput.New()
	input.Focus()
	return &models.AppModel{
		Input:    input,
		Spinner:  spinner.New(),
		Viewport: viewport.New(80, 20),
		Flags:    models.UIFlags{TextInputEnabled: true},
	}
}

func typeText(m *models.AppModel, eb *eventbus.EventBus, text string) {
	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}, eb)
}

func TestEnterSendsMessage(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := newModel()

	typeText(m, eb, "sysinfo")
	assert.Equal(t, "sysinfo", m.Input.Value())

	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEnter}, eb)

	require.Len(t, eb.UIToCore(), 1)
	assert.Equal(t, eventbus.SendMessageEvent{Message: "sysinfo"}, <-eb.UIToCore())
	assert.Empty(t, m.Input.Value())
}

func TestEnterForwardsBlankInput(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := newModel()

	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEnter}, eb)

	assert.Equal(t, eventbus.SendMessageEvent{Message: ""}, <-eb.UIToCore())
}

func TestEnterIgnoredWhileGenerating(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := newModel()
	m.Flags.ResponseGenerating = true

	typeText(m, eb, "battery")
	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEnter}, eb)

	assert.Empty(t, eb.UIToCore())
	assert.Equal(t, StatusBusy, m.Status)
	assert.Equal(t, "battery", m.Input.Value())
}

func TestToggleKey(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := newModel()

	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyCtrlO}, eb)

	assert.Equal(t, eventbus.ToggleOnlineModeEvent{}, <-eb.UIToCore())
}

func TestQuitKeys(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		cmd := HandleKeyMsgWithEventBus(newModel(), tea.KeyMsg{Type: key}, eb)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestHandleCoreEvent(t *testing.T) {
	m := newModel()
	HandleWindowSizeMsg(m, tea.WindowSizeMsg{Width: 80, Height: 24})

	turns := []models.Turn{{ID: "1", Author: models.Model, Text: "Hello!", IsComplete: true}}
	HandleCoreEvent(m, CoreEventMsg{Event: eventbus.StateUpdateEvent{
		Turns: turns,
		Flags: models.UIFlags{TextInputEnabled: true, ResponseGenerating: true, OnlineMode: true},
	}})

	assert.Equal(t, turns, m.Turns)
	assert.True(t, m.Flags.OnlineMode)
	assert.Equal(t, StatusGenerating, m.Status)
	assert.Contains(t, m.Viewport.View(), "Hello!")

	HandleCoreEvent(m, CoreEventMsg{Event: eventbus.StateUpdateEvent{Turns: turns}})
	assert.Equal(t, StatusClosed, m.Status)
}

func TestHandleWindowSize(t *testing.T) {
	m := newModel()
	HandleWindowSizeMsg(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.True(t, m.Ready)
	assert.Equal(t, 100, m.Viewport.Width)
	assert.Equal(t, 30-chromeHeight, m.Viewport.Height)
}
