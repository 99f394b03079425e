package tui

import "github.com/mmcdole/shelf/internal/history"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StateMsg carries a new history screen state
type StateMsg struct {
	State history.State
}

// EventMsg carries a one-shot history screen event
type EventMsg struct {
	Event history.Event
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// dialogOpenedMsg asks the model to pick up a dialog an intent opened
type dialogOpenedMsg struct{}

// streamClosedMsg signals that a screen channel closed
type streamClosedMsg struct{}
