package models

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Turns    []Turn  // Newest first, as pushed by the core
	Flags    UIFlags // Mirrored from the core, never mutated locally
	Input    textinput.Model
	Spinner  spinner.Model
	Viewport viewport.Model
	Status   string
	Width    int
	Height   int
	Ready    bool // Viewport sized at least once
}
