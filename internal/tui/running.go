package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sdejongh/casemover/pkg/config"
	"github.com/sdejongh/casemover/pkg/history"
	"github.com/sdejongh/casemover/pkg/logging"
	"github.com/sdejongh/casemover/pkg/migrate"
	"github.com/sdejongh/casemover/pkg/models"
)

// outcomeTailSize is how many recent outcomes the running view keeps.
const outcomeTailSize = 8

// RunningKeyMap defines key bindings while a run is in flight
type RunningKeyMap struct {
	Cancel key.Binding
}

// DefaultRunningKeys returns the default running-view key bindings
var DefaultRunningKeys = RunningKeyMap{
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "stop after current folder"),
	),
}

// RunningModel drives one migration run on a worker goroutine and shows
// its progress. The worker owns the Runner; this model only consumes the
// messages pumped off the events channel.
type RunningModel struct {
	op     *models.MigrationOperation
	keys   RunningKeyMap
	cancel context.CancelFunc
	ctx    context.Context

	runner *migrate.Runner
	logger logging.Logger
	store  *history.Store
	events chan tea.Msg

	spinner  spinner.Model
	progress progress.Model

	started    bool
	cancelling bool
	current    int
	total      int
	tail       []string
	stats      map[models.StatusCode]int

	width  int
	height int
}

// NewRunningModel creates the running view and its worker dependencies.
// The ledger and the log file are best effort: when either cannot be
// opened the run proceeds without it.
func NewRunningModel(cfg *config.Config, op *models.MigrationOperation) *RunningModel {
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := &RunningModel{
		op:       op,
		keys:     DefaultRunningKeys,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan tea.Msg),
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		stats:    make(map[models.StatusCode]int),
	}

	m.logger = logging.NewNullLogger()
	if cfg.Logging.Enabled && cfg.Logging.File != "" {
		format := logging.FormatText
		if cfg.Logging.Format == "json" {
			format = logging.FormatJSON
		}
		if fl, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:   cfg.Logging.File,
			Format: format,
			Level:  logging.ParseLevel(cfg.Logging.Level),
		}); err == nil {
			m.logger = fl
		}
	}

	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			path, _ = history.DefaultPath()
		}
		if path != "" {
			if store, err := history.Open(path); err == nil {
				m.store = store
			}
		}
	}

	m.runner = migrate.NewRunner(m.logger, m.store, migrate.Events{
		Started: func(folders, ids, matches int) {
			m.events <- runStartedMsg{
				FoldersScanned: folders,
				CaseIDsLoaded:  ids,
				Matches:        matches,
			}
		},
		Outcome: func(current, total int, outcome models.MoveOutcome) {
			m.events <- outcomeMsg{Current: current, Total: total, Outcome: outcome}
		},
	})

	return m
}

// SetSize updates the view dimensions
func (m *RunningModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	w := width - 8
	if w > 0 {
		m.progress.Width = w
	}
}

// Cancel requests a cooperative stop. The in-flight folder move finishes,
// then the batch stops between matches.
func (m *RunningModel) Cancel() {
	m.cancelling = true
	m.cancel()
}

// Close releases the worker's resources once the run has ended.
func (m *RunningModel) Close() {
	m.cancel()
	if m.store != nil {
		m.store.Close()
	}
	m.logger.Close()
}

// Init starts the worker and the event pump
func (m *RunningModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runWorker(), m.waitForEvent())
}

// runWorker executes the migration on the command's goroutine. The events
// channel is closed before the terminal message so the pump drains cleanly.
func (m *RunningModel) runWorker() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.runner.Run(m.ctx, m.op)
		close(m.events)
		if err != nil {
			return runFailedMsg{Err: err}
		}
		return runDoneMsg{Summary: summary}
	}
}

// waitForEvent pumps one worker event into the Update loop
func (m *RunningModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.events
		if !ok {
			return nil
		}
		return msg
	}
}

// Update handles messages for the running view
func (m *RunningModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.cancelling {
			m.Cancel()
		}
		return nil

	case runStartedMsg:
		m.started = true
		m.total = msg.Matches
		return m.waitForEvent()

	case outcomeMsg:
		m.current = msg.Current
		m.total = msg.Total
		m.stats[msg.Outcome.Status]++
		m.pushTail(msg.Outcome)
		return m.waitForEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}

	return nil
}

func (m *RunningModel) pushTail(outcome models.MoveOutcome) {
	line := fmt.Sprintf("%-28s %s", outcome.Status, outcome.SourcePath)
	m.tail = append(m.tail, line)
	if len(m.tail) > outcomeTailSize {
		m.tail = m.tail[len(m.tail)-outcomeTailSize:]
	}
}

// View renders the running view
func (m *RunningModel) View() string {
	var b strings.Builder

	mode := "Moving folders"
	if m.op.DryRun {
		mode = "Simulating run"
	}
	b.WriteString(titleStyle.Render(mode))
	b.WriteString("\n")

	if !m.started {
		b.WriteString(fmt.Sprintf("%s Loading CaseIDs and scanning %s\n", m.spinner.View(), m.op.SourcePath))
		return appStyle.Render(b.String())
	}

	b.WriteString(fmt.Sprintf("%s %d of %d matches\n\n", m.spinner.View(), m.current, m.total))

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.current) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n\n")

	for _, line := range m.tail {
		b.WriteString(outcomeDimStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.cancelling {
		b.WriteString(warnStyle.Render("Stopping after the current folder..."))
	} else {
		b.WriteString(renderHelp("esc", "stop after current folder", "ctrl+c", "quit"))
	}

	return appStyle.Render(b.String())
}
