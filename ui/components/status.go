package components

import (
	"github.com/Rorical/PocketDoc/internal/models"
	"github.com/Rorical/PocketDoc/ui/styles"
)

func RenderStatus(status string, flags models.UIFlags, spinner string, width int) string {
	mode := "OFFLINE"
	if flags.OnlineMode {
		mode = "ONLINE"
	}
	badge := styles.ModeStyle(flags.OnlineMode).Render(mode)

	content := status
	if flags.ResponseGenerating {
		content = spinner + " " + status
	}
	content += "  ctrl+o: mode  esc: quit"

	return badge + styles.StatusStyle(max(width-len(mode)-2, 0)).Render(content)
}
