package update

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/PocketDoc/internal/eventbus"
	"github.com/Rorical/PocketDoc/internal/models"
	"github.com/Rorical/PocketDoc/ui/components"
)

const (
	StatusReady      = "Ready"
	StatusGenerating = "Generating"
	StatusBusy       = "Please wait for the current answer"
	StatusClosed     = "Chat closed"
)

// Rows taken by everything except the conversation viewport.
const chromeHeight = 1 + 3 + 1

// HandleKeyMsgWithEventBus handles keyboard input using event bus
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	switch keyMsg.String() {
	case "ctrl+c", "esc":
		return tea.Quit
	case "ctrl+o":
		if err := eb.SendToCore(eventbus.ToggleOnlineModeEvent{}); err != nil {
			appModel.Status = "Error switching mode: " + err.Error()
		}
		return nil
	case "enter":
		if !appModel.Flags.TextInputEnabled {
			appModel.Status = StatusClosed
			return nil
		}
		if appModel.Flags.ResponseGenerating {
			appModel.Status = StatusBusy
			return nil
		}
		// Blank text is forwarded too; the core answers it with a hint.
		if err := eb.SendToCore(eventbus.SendMessageEvent{Message: appModel.Input.Value()}); err != nil {
			appModel.Status = "Error sending message: " + err.Error()
			return nil
		}
		appModel.Input.Reset()
		return nil
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		appModel.Viewport, cmd = appModel.Viewport.Update(keyMsg)
		return cmd
	}

	var cmd tea.Cmd
	appModel.Input, cmd = appModel.Input.Update(keyMsg)
	return cmd
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent mirrors a core snapshot into the UI model.
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Turns = event.Turns
		appModel.Flags = event.Flags

		switch {
		case !event.Flags.TextInputEnabled:
			appModel.Status = StatusClosed
			appModel.Input.Blur()
		case event.Flags.ResponseGenerating:
			appModel.Status = StatusGenerating
		default:
			appModel.Status = StatusReady
		}
		refreshViewport(appModel)
	}

	return nil
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height

	appModel.Viewport.Width = sizeMsg.Width
	appModel.Viewport.Height = max(sizeMsg.Height-chromeHeight, 1)
	appModel.Input.Width = max(sizeMsg.Width-8, 1)
	appModel.Ready = true
	refreshViewport(appModel)
}

// HandleSpinnerTick advances the spinner. Placeholder turns embed the
// spinner frame, so the viewport is redrawn while one is shown.
func HandleSpinnerTick(appModel *models.AppModel, tick spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	appModel.Spinner, cmd = appModel.Spinner.Update(tick)
	if appModel.Flags.ResponseGenerating {
		refreshViewport(appModel)
	}
	return cmd
}

func refreshViewport(appModel *models.AppModel) {
	if !appModel.Ready {
		return
	}
	atBottom := appModel.Viewport.AtBottom()
	appModel.Viewport.SetContent(components.RenderTurns(appModel.Turns, appModel.Spinner.View()))
	if atBottom || appModel.Flags.ResponseGenerating {
		appModel.Viewport.GotoBottom()
	}
}
