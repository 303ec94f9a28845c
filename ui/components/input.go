package components

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/Rorical/PocketDoc/internal/models"
	"github.com/Rorical/PocketDoc/ui/styles"
)

func RenderInput(input textinput.Model, flags models.UIFlags, width int) string {
	if !flags.TextInputEnabled {
		return styles.DisabledInputStyle(width).Render("Chat closed")
	}
	return styles.InputStyle(width).Render(input.View())
}
