// Package tui is the interactive front-end: a form to describe a run, a
// live view while the batch executes and a summary afterwards.
//
// The engine stays single-threaded and knows nothing about the UI. One
// worker goroutine drives the Runner; everything it observes arrives in
// the Update loop as messages, never by reading engine state directly.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sdejongh/casemover/pkg/config"
)

// ViewState represents the current view
type ViewState int

const (
	ViewForm ViewState = iota
	ViewRunning
	ViewSummary
)

// App is the main TUI application model
type App struct {
	cfg *config.Config

	state   ViewState
	form    *FormModel
	running *RunningModel
	summary *SummaryModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(cfg *config.Config) *App {
	return &App{
		cfg:   cfg,
		state: ViewForm,
		form:  NewFormModel(cfg),
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(cfg *config.Config) error {
	_, err := tea.NewProgram(NewApp(cfg), tea.WithAltScreen()).Run()
	return err
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.form.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.form.SetSize(msg.Width, msg.Height)
		if a.running != nil {
			a.running.SetSize(msg.Width, msg.Height)
		}
		if a.summary != nil {
			a.summary.SetSize(msg.Width, msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		// Ctrl-C always quits; a running worker is cancelled first so an
		// in-flight move can finish.
		if msg.String() == "ctrl+c" {
			if a.state == ViewRunning && a.running != nil {
				a.running.Cancel()
			}
			return a, tea.Quit
		}

	// View switching messages
	case startRunMsg:
		a.running = NewRunningModel(a.cfg, msg.Op)
		a.running.SetSize(a.width, a.height)
		a.state = ViewRunning
		return a, a.running.Init()

	case runDoneMsg:
		if a.running != nil {
			a.running.Close()
		}
		a.summary = NewSummaryModel(msg.Summary)
		a.summary.SetSize(a.width, a.height)
		a.state = ViewSummary
		return a, nil

	case runFailedMsg:
		// Precondition failure: nothing moved, back to the form.
		if a.running != nil {
			a.running.Close()
		}
		a.state = ViewForm
		a.form.SetError(msg.Err.Error())
		return a, nil

	case newRunMsg:
		a.state = ViewForm
		a.form.SetError("")
		return a, a.form.Init()
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewForm:
		cmd = a.form.Update(msg)
	case ViewRunning:
		cmd = a.running.Update(msg)
	case ViewSummary:
		cmd = a.summary.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewRunning:
		return a.running.View()
	case ViewSummary:
		return a.summary.View()
	default:
		return a.form.View()
	}
}
