package models

// Author identifies who produced a turn.
type Author int

const (
	User Author = iota
	Model
)

func (a Author) String() string {
	switch a {
	case User:
		return "user"
	case Model:
		return "model"
	default:
		return "unknown"
	}
}

// Turn is one message of the conversation. The core only ever hands out
// copies, so a Turn held by the display layer never changes underneath it.
type Turn struct {
	ID            string
	Author        Author
	Text          string
	IsComplete    bool
	IsPlaceholder bool // created before any content arrived (loading indicator)
}

// InFlight reports whether the turn is still receiving content.
func (t Turn) InFlight() bool {
	return !t.IsComplete
}

// UIFlags is the session-scoped state the display layer mirrors.
type UIFlags struct {
	TextInputEnabled   bool
	ResponseGenerating bool
	OnlineMode         bool
}
