package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/PocketDoc/internal/update"
	"github.com/Rorical/PocketDoc/ui/components"
	"github.com/Rorical/PocketDoc/ui/styles"
)

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.appModel.Spinner.Tick,
		m.dispatcher.ListenForUIEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, m.dispatcher.GetEventBus())
	return m, cmd
}

func (m *AppModel) View() string {
	if !m.appModel.Ready {
		return "Starting PocketDoc..."
	}

	var b strings.Builder
	b.WriteString(styles.HeaderStyle(m.appModel.Width).Render("PocketDoc"))
	b.WriteString("\n")
	b.WriteString(m.appModel.Viewport.View())
	b.WriteString("\n")
	b.WriteString(components.RenderInput(m.appModel.Input, m.appModel.Flags, m.appModel.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(m.appModel.Status, m.appModel.Flags, m.appModel.Spinner.View(), m.appModel.Width))

	return b.String()
}
