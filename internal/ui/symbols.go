package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status glyphs.
const (
	SymbolSuccess  = "◉"
	SymbolFail     = "✕"
	SymbolPending  = "◇"
	SymbolProgress = "◆"
	SymbolComplete = "●"
	SymbolSkipped  = "⊖"
	SymbolWarning  = "⚠"
	SymbolCurrent  = "▸" // marks the current activity
)

// taskKind groups the free-form task states the agent reports.
type taskKind int

const (
	taskPending taskKind = iota
	taskRunning
	taskDone
	taskFailed
	taskSkipped
)

func classifyTask(state string) taskKind {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "done", "complete", "completed", "finished", "success":
		return taskDone
	case "running", "active", "current", "inprogress", "in_progress":
		return taskRunning
	case "failed", "fail", "error":
		return taskFailed
	case "skipped", "skip":
		return taskSkipped
	default:
		return taskPending
	}
}

// TaskSymbol returns the glyph for a task state. Unknown states are
// treated as pending.
func TaskSymbol(state string) string {
	switch classifyTask(state) {
	case taskRunning:
		return SymbolProgress
	case taskDone:
		return SymbolComplete
	case taskFailed:
		return SymbolFail
	case taskSkipped:
		return SymbolSkipped
	default:
		return SymbolPending
	}
}

// TaskStyle returns the color style for a task state.
func TaskStyle(state string) lipgloss.Style {
	switch classifyTask(state) {
	case taskRunning:
		return InfoStyle()
	case taskDone:
		return SuccessStyle()
	case taskFailed:
		return ErrorStyle()
	case taskSkipped:
		return WarningStyle()
	default:
		return MutedStyle()
	}
}
