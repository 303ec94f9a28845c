package components

import (
	"strings"

	"github.com/Rorical/PocketDoc/internal/models"
	"github.com/Rorical/PocketDoc/internal/utils"
	"github.com/Rorical/PocketDoc/ui/styles"
)

// RenderTurns renders the conversation oldest first from the newest-first
// list the core publishes. spinner is drawn for turns still waiting for
// their first content.
func RenderTurns(turns []models.Turn, spinner string) string {
	var b strings.Builder

	userStyle := styles.UserStyle()
	modelStyle := styles.ModelStyle()
	placeholderStyle := styles.PlaceholderStyle()

	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		switch {
		case turn.Author == models.User:
			b.WriteString(userStyle.Render("You: "+turn.Text) + "\n\n")
		case turn.IsPlaceholder && turn.Text == "":
			b.WriteString(placeholderStyle.Render(spinner+" thinking...") + "\n\n")
		default:
			b.WriteString(modelStyle.Render("PocketDoc: "+utils.RenderMarkdown(turn.Text)) + "\n\n")
		}
	}

	return b.String()
}
