package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sdejongh/casemover/pkg/config"
	"github.com/sdejongh/casemover/pkg/models"
)

// Form field indexes. Text inputs come first, then the policy toggles,
// so tab order walks top to bottom.
const (
	fieldSource = iota
	fieldDest
	fieldCaseIDs
	fieldColumn
	fieldDryRun
	fieldDuplicates
	fieldOnExists
	fieldCount
)

// FormKeyMap defines key bindings for the run form
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// DefaultFormKeys returns the default form key bindings
var DefaultFormKeys = FormKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "space", "left", "right"),
		key.WithHelp("space", "change value"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "start run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "quit"),
	),
}

var (
	duplicatesChoices = []models.DuplicatesPolicy{
		models.DuplicatesQuarantine,
		models.DuplicatesSkip,
		models.DuplicatesMoveAll,
	}
	onExistsChoices = []models.ExistsPolicy{
		models.ExistsRename,
		models.ExistsSkip,
	}
)

// FormModel collects the parameters of one migration run
type FormModel struct {
	cfg  *config.Config
	keys FormKeyMap

	inputs  []textinput.Model // source, dest, caseids, column
	focused int

	dryRun     bool
	duplicates int // index into duplicatesChoices
	onExists   int // index into onExistsChoices

	errMsg string
	width  int
	height int
}

// NewFormModel creates the form pre-filled with the config defaults
func NewFormModel(cfg *config.Config) *FormModel {
	labels := []string{
		"Source directory",
		"Destination directory",
		"CaseID file (.txt, .csv, .xlsx)",
		"Column (optional, name or letter)",
	}

	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		in := textinput.New()
		in.Placeholder = label
		in.CharLimit = 512
		inputs[i] = in
	}
	inputs[0].Focus()

	m := &FormModel{
		cfg:    cfg,
		keys:   DefaultFormKeys,
		inputs: inputs,
	}
	for i, p := range duplicatesChoices {
		if p == cfg.Move.DuplicatesAction {
			m.duplicates = i
		}
	}
	for i, p := range onExistsChoices {
		if p == cfg.Move.OnDestExists {
			m.onExists = i
		}
	}
	return m
}

// SetSize updates the view dimensions
func (m *FormModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetError displays a validation or run-setup error inline
func (m *FormModel) SetError(msg string) {
	m.errMsg = msg
}

// Init returns the blink command for the focused input
func (m *FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the form
func (m *FormModel) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocusedInput(msg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Next):
		m.focus((m.focused + 1) % fieldCount)
		return nil

	case key.Matches(keyMsg, m.keys.Prev):
		m.focus((m.focused + fieldCount - 1) % fieldCount)
		return nil

	case key.Matches(keyMsg, m.keys.Submit):
		return m.submit()

	case key.Matches(keyMsg, m.keys.Quit) && m.focused >= fieldDryRun:
		return tea.Quit

	case key.Matches(keyMsg, m.keys.Toggle) && m.focused >= fieldDryRun:
		m.toggle()
		return nil
	}

	return m.updateFocusedInput(msg)
}

func (m *FormModel) focus(i int) {
	if m.focused < len(m.inputs) {
		m.inputs[m.focused].Blur()
	}
	m.focused = i
	if i < len(m.inputs) {
		m.inputs[i].Focus()
	}
}

func (m *FormModel) toggle() {
	switch m.focused {
	case fieldDryRun:
		m.dryRun = !m.dryRun
	case fieldDuplicates:
		m.duplicates = (m.duplicates + 1) % len(duplicatesChoices)
	case fieldOnExists:
		m.onExists = (m.onExists + 1) % len(onExistsChoices)
	}
}

func (m *FormModel) updateFocusedInput(msg tea.Msg) tea.Cmd {
	if m.focused >= len(m.inputs) {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return cmd
}

// submit validates the inputs and, when they hold up, emits startRunMsg.
func (m *FormModel) submit() tea.Cmd {
	op, err := m.buildOperation()
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	return func() tea.Msg {
		return startRunMsg{Op: op}
	}
}

// buildOperation turns the form state into a validated operation. The
// same preconditions the CLI checks apply here, reported inline.
func (m *FormModel) buildOperation() (*models.MigrationOperation, error) {
	source := strings.TrimSpace(m.inputs[fieldSource].Value())
	dest := strings.TrimSpace(m.inputs[fieldDest].Value())
	caseIDFile := strings.TrimSpace(m.inputs[fieldCaseIDs].Value())
	column := strings.TrimSpace(m.inputs[fieldColumn].Value())

	if info, err := os.Stat(source); os.IsNotExist(err) {
		return nil, fmt.Errorf("source path does not exist: %s", source)
	} else if err != nil {
		return nil, fmt.Errorf("failed to access source path: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", source)
	}

	if info, err := os.Stat(dest); os.IsNotExist(err) {
		return nil, fmt.Errorf("destination path does not exist: %s", dest)
	} else if err != nil {
		return nil, fmt.Errorf("failed to access destination path: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("destination path is not a directory: %s", dest)
	}

	if _, err := os.Stat(caseIDFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("CaseID file does not exist: %s", caseIDFile)
	}

	sourceAbs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path: %w", err)
	}
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination path: %w", err)
	}
	if sourceAbs == destAbs {
		return nil, fmt.Errorf("source and destination cannot be the same")
	}
	if strings.HasPrefix(destAbs, sourceAbs+string(filepath.Separator)) ||
		strings.HasPrefix(sourceAbs, destAbs+string(filepath.Separator)) {
		return nil, fmt.Errorf("source and destination cannot be nested")
	}

	op := &models.MigrationOperation{
		ID:               uuid.New().String(),
		SourcePath:       source,
		DestPath:         dest,
		CaseIDFile:       caseIDFile,
		CaseIDColumn:     column,
		ReportPath:       fmt.Sprintf("casemover_report_%s.csv", time.Now().Format("20060102_150405")),
		DryRun:           m.dryRun,
		MaxOperations:    m.cfg.Move.MaxOperations,
		ExcludePatterns:  m.cfg.Exclude,
		OnDestExists:     onExistsChoices[m.onExists],
		DuplicatesAction: duplicatesChoices[m.duplicates],
		CaseSensitive:    m.cfg.Move.CaseSensitive,
		Strategy:         m.cfg.Move.Strategy,
		BandwidthLimit:   m.cfg.Performance.BandwidthLimit,
		BufferSize:       m.cfg.Performance.BufferSize,
		CreatedAt:        time.Now(),
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}
	return op, nil
}

// View renders the form
func (m *FormModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("casemover"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Describe the migration run, then press enter."))
	b.WriteString("\n\n")

	labels := []string{"Source", "Destination", "CaseID file", "Column"}
	for i, in := range m.inputs {
		style := inputStyle
		if m.focused == i {
			style = inputFocusedStyle
		}
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(style.Render(in.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderToggle(fieldDryRun, "Dry run", onOff(m.dryRun)))
	b.WriteString(m.renderToggle(fieldDuplicates, "Duplicates", string(duplicatesChoices[m.duplicates])))
	b.WriteString(m.renderToggle(fieldOnExists, "On collision", string(onExistsChoices[m.onExists])))

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHelp(
		"tab", "next field",
		"space", "change value",
		"enter", "start run",
		"ctrl+c", "quit",
	))

	return appStyle.Render(b.String())
}

func (m *FormModel) renderToggle(field int, label, value string) string {
	style := toggleStyle
	if m.focused == field {
		style = toggleFocusedStyle
	}
	return fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), style.Render(value))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// renderHelp formats alternating key/description pairs on one line.
func renderHelp(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpKeyStyle.Render(pairs[i])+" "+helpDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, helpDescStyle.Render("  •  "))
}
