package progress

import (
	"io"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"DiscussionScanner/internal/ports"
)

var frames = []string{"⢿", "⣻", "⣽", "⣾", "⣷", "⣯", "⣟", "⡿"}

const frameInterval = 100 * time.Millisecond

type tickMsg struct{}

type describeMsg string

type stopMsg struct{}

type model struct {
	desc  string
	frame int
	done  bool
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(frames)
		return m, tick()
	case describeMsg:
		m.desc = string(msg)
		return m, nil
	case stopMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return doneStyle.Render(m.desc+" complete.") + "\n"
	}
	return m.desc + " " + spinnerStyle.Render(frames[m.frame])
}

// Terminal renders a spinner with the current step description.
type Terminal struct {
	out    io.Writer
	logger *slog.Logger
}

var _ ports.Progress = (*Terminal)(nil)

// NewTerminal draws spinners on out.
func NewTerminal(out io.Writer, logger *slog.Logger) *Terminal {
	return &Terminal{out: out, logger: logger}
}

// Start launches a spinner showing desc until Done is called.
func (t *Terminal) Start(desc string) ports.Task {
	p := tea.NewProgram(model{desc: desc},
		tea.WithInput(nil),
		tea.WithOutput(t.out),
		tea.WithoutSignalHandler(),
	)

	task := &terminalTask{program: p, finished: make(chan struct{})}
	go func() {
		defer close(task.finished)
		if _, err := p.Run(); err != nil && t.logger != nil {
			t.logger.Debug("spinner stopped", "err", err)
		}
	}()
	return task
}

type terminalTask struct {
	program  *tea.Program
	finished chan struct{}
	once     sync.Once
}

func (t *terminalTask) Describe(desc string) {
	t.program.Send(describeMsg(desc))
}

func (t *terminalTask) Done() {
	t.once.Do(func() {
		t.program.Send(stopMsg{})
		<-t.finished
	})
}

// Discard is a Progress that draws nothing.
type Discard struct{}

var _ ports.Progress = Discard{}

// Start returns a no-op task.
func (Discard) Start(string) ports.Task { return discardTask{} }

type discardTask struct{}

func (discardTask) Describe(string) {}
func (discardTask) Done()           {}
