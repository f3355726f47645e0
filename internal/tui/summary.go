package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sdejongh/casemover/pkg/models"
)

// SummaryKeyMap defines key bindings for the summary view
type SummaryKeyMap struct {
	Copy   key.Binding
	NewRun key.Binding
	Quit   key.Binding
}

// DefaultSummaryKeys returns the default summary key bindings
var DefaultSummaryKeys = SummaryKeyMap{
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy report path"),
	),
	NewRun: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// SummaryModel shows the results of a finished run
type SummaryModel struct {
	summary *models.RunSummary
	keys    SummaryKeyMap
	note    string

	width  int
	height int
}

// NewSummaryModel creates the summary view
func NewSummaryModel(summary *models.RunSummary) *SummaryModel {
	return &SummaryModel{
		summary: summary,
		keys:    DefaultSummaryKeys,
	}
}

// SetSize updates the view dimensions
func (m *SummaryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the summary view
func (m *SummaryModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Copy):
			return m.copyReportPath()
		case key.Matches(msg, m.keys.NewRun):
			return func() tea.Msg { return newRunMsg{} }
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		}

	case clipboardMsg:
		if msg.Err != nil {
			m.note = errorStyle.Render("Copy failed: " + msg.Err.Error())
		} else {
			m.note = successStyle.Render("Report path copied to clipboard")
		}
	}
	return nil
}

func (m *SummaryModel) copyReportPath() tea.Cmd {
	path := m.summary.ReportPath
	if path == "" {
		m.note = warnStyle.Render("No report was written")
		return nil
	}
	return func() tea.Msg {
		return clipboardMsg{Err: clipboard.WriteAll(path)}
	}
}

// View renders the summary view
func (m *SummaryModel) View() string {
	var b strings.Builder
	s := m.summary

	headline := "Run completed"
	style := successStyle
	switch s.Status {
	case models.RunCompletedWithErrors:
		headline = "Run completed with errors"
		style = warnStyle
	case models.RunInterrupted:
		headline = "Run interrupted"
		style = warnStyle
	}
	if s.DryRun {
		headline += " (dry run)"
	}
	b.WriteString(titleStyle.Render("casemover"))
	b.WriteString("\n")
	b.WriteString(style.Render(headline))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s -> %s\n", s.SourcePath, s.DestPath))
	b.WriteString(fmt.Sprintf("  %d folders scanned, %d CaseIDs, %d matches, took %s\n\n",
		s.FoldersScanned, s.CaseIDsLoaded, s.MatchesFound, s.Duration.Round(10*time.Millisecond)))

	for _, status := range models.AllStatuses() {
		if count := s.Stats[status]; count > 0 {
			b.WriteString(fmt.Sprintf("  %-28s %d\n", status, count))
		}
	}
	if len(s.UnmatchedIDs) > 0 {
		b.WriteString(fmt.Sprintf("  %-28s %d\n", "NOT_FOUND", len(s.UnmatchedIDs)))
	}
	if s.EarlyStop {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("  Stopped early: operation budget reached"))
		b.WriteString("\n")
	}

	if s.ReportPath != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("  Report: "))
		b.WriteString(s.ReportPath)
		b.WriteString("\n")
	}

	if m.note != "" {
		b.WriteString("\n")
		b.WriteString(m.note)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHelp("c", "copy report path", "n", "new run", "q", "quit"))

	return appStyle.Render(b.String())
}
