package tui

import (
	"codeberg.org/storefront/server/internal/presence"
	"github.com/charmbracelet/bubbles/spinner"
)

// represents the current state of the TUI
type AppState int

const (
	StateConnecting AppState = iota
	StateWatching
	StateLeaving
)

// live viewer monitor for one product
type Model struct {
	state     AppState
	productID string
	endpoint  string
	widget    *presence.Widget
	spinner   spinner.Model
	snapshot  presence.Snapshot
	width     int
	err       error
}

// sent when the widget has joined (or failed to)
type MountedMsg struct {
	err error
}

// sent for every widget snapshot
type SnapshotMsg struct {
	snapshot presence.Snapshot
}

// sent once the widget has left its session
type UnmountedMsg struct {
	err error
}
