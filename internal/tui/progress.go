// Package tui renders live sweep progress with bubbletea, fed by the
// runner's progress callback.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gwdetect/internal/sweep"
	"github.com/san-kum/gwdetect/internal/viz"
)

// ProgressMsg carries a sweep progress snapshot into the model.
type ProgressMsg sweep.Progress

// DoneMsg tells the model the sweep finished.
type DoneMsg struct{}

const barWidth = 40

type Model struct {
	total    int
	done     int
	failed   int
	elapsed  time.Duration
	finished bool
}

func New(total int) Model {
	return Model{total: total}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.done = msg.Done
		m.failed = msg.Failed
		m.elapsed = msg.Elapsed
		return m, nil
	case DoneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.finished = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.total == 0 {
		return ""
	}

	frac := float64(m.done) / float64(m.total)
	filled := int(frac * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	rate := 0.0
	if m.elapsed > 0 {
		rate = float64(m.done) / m.elapsed.Seconds()
	}

	var b strings.Builder
	b.WriteString(viz.Title.Render("detection power sweep"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %s %3.0f%%\n", bar, 100*frac)
	fmt.Fprintf(&b, "  %s  %s",
		viz.Value.Render(fmt.Sprintf("%d/%d runs", m.done, m.total)),
		viz.Subtle.Render(fmt.Sprintf("%.1f runs/s, %s elapsed", rate, m.elapsed.Round(time.Second))))
	if m.failed > 0 {
		b.WriteString("  ")
		b.WriteString(viz.Fail.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	b.WriteString("\n")
	if m.finished {
		b.WriteString(viz.Subtle.Render("  done\n"))
	}
	return b.String()
}
