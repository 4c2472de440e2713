package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrColumnView is returned when asked to prompt a summary column view.
	ErrColumnView = errors.New("tui: column views cannot be prompted")
	// ErrInvalidSubmission wraps the issues left after every prompt ran.
	ErrInvalidSubmission = errors.New("tui: submission is invalid")
)
