package tui

import (
	"context"
	"time"

	"codeberg.org/storefront/server/internal/presence"
	tea "github.com/charmbracelet/bubbletea"
)

const leaveTimeout = 5 * time.Second

func mountCmd(w *presence.Widget) tea.Cmd {
	return func() tea.Msg {
		return MountedMsg{err: w.Mount(context.Background())}
	}
}

// waits for the next snapshot; re-issued after every SnapshotMsg
func waitForSnapshot(w *presence.Widget) tea.Cmd {
	return func() tea.Msg {
		return SnapshotMsg{snapshot: <-w.Updates()}
	}
}

func unmountCmd(w *presence.Widget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
		defer cancel()

		return UnmountedMsg{err: w.Unmount(ctx)}
	}
}
