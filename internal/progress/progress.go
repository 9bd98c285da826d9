// Package progress renders batch-run progress for bakasync's CLI:
// one result line per finished video plus a spinner line counting the
// videos done so far. Grounded on
// the teacher's internal/ui/execution log strip and internal/ui/styles
// palette, simplified from a full-screen TUI down to a scrolling
// status line suited to a non-interactive batch tool.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	neonPink = lipgloss.Color("#F700FF")
	cyan     = lipgloss.Color("#00FFFF")
	yellow   = lipgloss.Color("#FFFF00")
	gray     = lipgloss.Color("#808080")

	okStyle   = lipgloss.NewStyle().Foreground(cyan)
	failStyle = lipgloss.NewStyle().Foreground(neonPink).Bold(true)
	pathStyle = lipgloss.NewStyle().Foreground(yellow)
	doneStyle = lipgloss.NewStyle().Foreground(gray)
)

// Status is the outcome of one file's sync attempt, reported through
// tea.Program as a message.
type Status struct {
	Path string
	Done bool
	OK   bool
	Text string
}

// Model is a minimal bubbletea program that renders one fixed result
// line per finished file in a batch run, plus a single spinner line
// with a done/total count while files remain.
type Model struct {
	spinner spinner.Model
	total   int
	results []Status
	mu      sync.Mutex
}

// New builds a batch-progress model for a run of total files.
func New(total int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonPink)
	return Model{spinner: s, total: total}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Status:
		m.results = append(m.results, msg)
		if len(m.results) >= m.total {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m Model) View() string {
	var b strings.Builder
	for _, r := range m.results {
		line := resultLine(r)
		b.WriteString(doneStyle.Render(line))
		b.WriteString("\n")
	}
	remaining := m.total - len(m.results)
	if remaining > 0 {
		b.WriteString(fmt.Sprintf("%s %s (%d/%d)\n", m.spinner.View(), pathStyle.Render("synchronizing"), len(m.results), m.total))
	}
	return b.String()
}

func resultLine(r Status) string {
	mark := okStyle.Render("OK")
	if !r.OK {
		mark = failStyle.Render("FAIL")
	}
	return fmt.Sprintf("[%s] %s %s", mark, pathStyle.Render(r.Path), r.Text)
}

// Reporter writes plain-text status lines directly to w, used when the
// batch tool is run without a TTY (piped output, CI logs) where a
// bubbletea program would refuse to attach.
type Reporter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewReporter builds a plain-text progress sink.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report writes one result line.
func (r *Reporter) Report(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, resultLine(s))
}
