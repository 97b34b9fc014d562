package tui

import (
	"fmt"
	"strings"

	"codeberg.org/storefront/server/internal/presence"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func NewApp(endpoint, productID string, widget *presence.Widget) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle

	return &Model{
		state:     StateConnecting,
		productID: productID,
		endpoint:  endpoint,
		widget:    widget,
		spinner:   s,
		snapshot:  presence.Snapshot{ProductID: productID},
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, mountCmd(m.widget), waitForSnapshot(m.widget))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.state == StateLeaving {
				return m, nil
			}

			m.state = StateLeaving
			return m, unmountCmd(m.widget)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case MountedMsg:
		// a failed join is retried by the widget, keep watching
		m.err = msg.err
		if m.state == StateConnecting {
			m.state = StateWatching
		}

	case SnapshotMsg:
		m.snapshot = msg.snapshot
		if m.state == StateLeaving {
			return m, nil
		}

		return m, waitForSnapshot(m.widget)

	case UnmountedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("storefront live viewers"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("product %s  ·  %s", m.productID, m.endpoint)))
	b.WriteString("\n\n")

	switch m.state {
	case StateConnecting:
		b.WriteString(m.spinner.View() + " joining...")

	case StateLeaving:
		b.WriteString(m.spinner.View() + " leaving...")

	default:
		b.WriteString(m.watchingView())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q to leave"))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) watchingView() string {
	snap := m.snapshot

	status := onlineStyle.Render("● live")
	if !snap.Online {
		status = offlineStyle.Render("● offline")
	}

	lines := []string{
		countStyle.Render(fmt.Sprintf("%d watching", snap.Count)),
		status,
	}

	if snap.SessionID != "" {
		lines = append(lines, infoStyle.Render("session "+snap.SessionID))
	} else {
		lines = append(lines, infoStyle.Render(m.spinner.View()+" waiting for a session"))
	}

	if snap.Err != nil {
		lines = append(lines, infoStyle.Render("last error: "+snap.Err.Error()))
	} else if m.err != nil {
		lines = append(lines, infoStyle.Render("join failed: "+m.err.Error()))
	}

	if !snap.UpdatedAt.IsZero() {
		lines = append(lines, infoStyle.Render("updated "+snap.UpdatedAt.Format("15:04:05")))
	}

	return strings.Join(lines, "\n")
}
