package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/seoflow/seoflow/pkg/workflow"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// runModel - Live workflow progress
// =============================================================================

// Messages delivered into the TUI from the workflow goroutine.
type (
	progressMsg workflow.ProgressEvent
	doneMsg     struct{ resp *workflow.Response }
	tickMsg     time.Time
)

// runModel is the bubbletea model showing a workflow run: the stage
// checklist, a progress bar, and the latest status message.
type runModel struct {
	keyword   string
	cancel    context.CancelFunc
	current   int // index into workflow.StageOrder; -1 before the first event
	percent   int
	message   string
	frame     int
	canceling bool
	resp      *workflow.Response
}

// newRunModel creates the progress model for one workflow run. cancel is
// invoked when the user aborts; the model quits once the canceled run's
// final response arrives.
func newRunModel(keyword string, cancel context.CancelFunc) runModel {
	return runModel{keyword: keyword, cancel: cancel, current: -1}
}

func (m runModel) Init() tea.Cmd {
	return runTick()
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if idx := stageIndex(msg.Stage); idx > m.current {
			m.current = idx
		}
		m.percent = msg.Percent
		m.message = msg.Message
	case doneMsg:
		m.resp = msg.resp
		return m, tea.Quit
	case tickMsg:
		m.frame++
		if m.resp == nil {
			return m, runTick()
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.canceling {
				m.canceling = true
				m.cancel()
			}
		}
	}
	return m, nil
}

func (m runModel) View() string {
	if m.resp != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(StyleTitle.Render(appName))
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(StyleValue.Render(m.keyword))
	b.WriteString("\n\n")

	for i, s := range workflow.StageOrder {
		switch {
		case i < m.current:
			b.WriteString("  " + styleIconSuccess.Render(iconSuccess) + " " + StyleDim.Render(string(s)))
		case i == m.current:
			frame := spinnerFrames[m.frame%len(spinnerFrames)]
			b.WriteString("  " + styleIconSpinner.Render(frame) + " " + listSelectedStyle.Render(string(s)))
		default:
			b.WriteString("  " + listDimStyle.Render("· "+string(s)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(renderBar(m.percent, 32))
	b.WriteString(" " + StyleNumber.Render(fmt.Sprintf("%d%%", m.percent)))
	b.WriteString("\n  ")
	b.WriteString(StyleDim.Render(m.message))
	b.WriteString("\n\n  ")
	if m.canceling {
		b.WriteString(StyleWarning.Render("canceling..."))
	} else {
		b.WriteString(listDimStyle.Render("q cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

// runTick schedules the next spinner frame.
func runTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// renderBar draws a fixed-width progress bar for percent (0-100).
func renderBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return StyleHighlight.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", width-filled))
}

// stageIndex returns the position of s in the stage order, or -1 for idle
// and unknown stages.
func stageIndex(s workflow.Stage) int {
	for i, stage := range workflow.StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}
