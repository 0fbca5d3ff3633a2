package ui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/petr-muller/jironimo/internal/jironimo/jira"
	"github.com/petr-muller/jironimo/internal/jironimo/service"
	"github.com/petr-muller/jironimo/internal/jironimo/storage"
	"github.com/petr-muller/jironimo/internal/jironimo/workspace"
)

// Board is the workspace board driven by the UI
type Board interface {
	Refresh(ctx context.Context) error
	Previous(ctx context.Context) error
	Next(ctx context.Context) error
	SwitchTo(ctx context.Context, index int) error
	Snapshot() workspace.Snapshot
}

// Worker performs the issue actions offered by the UI
type Worker interface {
	StartWork(ctx context.Context, record service.Record) error
	StopWork(ctx context.Context, key, comment string) (*gojira.WorklogRecord, error)
	Transitions(ctx context.Context, key string) ([]gojira.Transition, error)
	Transition(ctx context.Context, key, transitionID string) error
	Tracker() *service.Tracker
}

type statusMsg string

type errMsg struct{ err error }

type tickMsg time.Time

type transitionsMsg struct {
	key         string
	transitions []gojira.Transition
}

// Model is the TUI model of the workspace board
type Model struct {
	ctx        context.Context
	board      Board
	worker     Worker
	events     *Events
	account    jira.Account
	workspaces []storage.Workspace
	open       func(url string) error

	table   table.Model
	spinner spinner.Model

	snapshot workspace.Snapshot
	banner   string
	status   string

	transitionKey string
	transitions   []gojira.Transition
	ticking       bool

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, board Board, worker Worker, events *Events, account jira.Account, workspaces []storage.Workspace) Model {
	columns := []table.Column{
		{Title: "Key", Width: 10},
		{Title: "Size", Width: 4},
		{Title: "Priority", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Estimate", Width: 10},
		{Title: "Assignee", Width: 14},
		{Title: "Summary", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(2),
	)

	m := Model{
		ctx:        ctx,
		board:      board,
		worker:     worker,
		events:     events,
		account:    account,
		workspaces: workspaces,
		open:       openBrowser,
		table:      t,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		snapshot:   board.Snapshot(),
	}
	m.updateSelectionStyle()
	return m
}

// Init starts listening for board events and loads the first page
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.events.wait(), m.spinner.Tick, m.boardCmd(m.board.Refresh))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateTableSize()
	case snapshotMsg:
		m.applySnapshot(workspace.Snapshot(msg))
		return m, m.events.wait()
	case failureMsg:
		m.banner = bannerText(msg.StatusText, msg.Messages)
		return m, m.events.wait()
	case statusMsg:
		m.status = string(msg)
		if !m.ticking && len(m.worker.Tracker().Tracking()) > 0 {
			m.ticking = true
			return m, tick()
		}
		return m, nil
	case errMsg:
		m.status = msg.err.Error()
		return m, nil
	case transitionsMsg:
		m.transitionKey = msg.key
		m.transitions = msg.transitions
		if len(msg.transitions) == 0 {
			m.status = fmt.Sprintf("No transitions available for %s", msg.key)
			m.transitionKey = ""
		}
		return m, nil
	case tickMsg:
		if len(m.worker.Tracker().Tracking()) > 0 {
			return m, tick()
		}
		m.ticking = false
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.transitionKey != "" {
			return m.pickTransition(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.boardCmd(m.board.Refresh)
		case "left", "h":
			if m.snapshot.Pager.HasPrevious() {
				return m, m.boardCmd(m.board.Previous)
			}
			return m, nil
		case "right", "l":
			if m.snapshot.Pager.HasNext() {
				return m, m.boardCmd(m.board.Next)
			}
			return m, nil
		case "tab":
			return m, m.switchCmd(m.snapshot.Index + 1)
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			return m, m.switchCmd(int(msg.String()[0] - '1'))
		case "o", "enter":
			if record, ok := m.selected(); ok {
				return m, m.openCmd(m.account.IssueURL(record.Key))
			}
			return m, nil
		case "s":
			if record, ok := m.selected(); ok {
				return m, m.toggleWorkCmd(record)
			}
			return m, nil
		case "t":
			if record, ok := m.selected(); ok {
				return m, m.transitionsCmd(record.Key)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)

	m.updateSelectionStyle()

	return m, tea.Batch(cmds...)
}

func (m Model) pickTransition(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := m.transitionKey
	switch msg.String() {
	case "esc", "q":
		m.transitionKey = ""
		m.transitions = nil
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		choice := int(msg.String()[0] - '1')
		if choice >= len(m.transitions) {
			return m, nil
		}
		transition := m.transitions[choice]
		m.transitionKey = ""
		m.transitions = nil
		return m, m.transitionCmd(key, transition)
	}
	return m, nil
}

func (m *Model) applySnapshot(snapshot workspace.Snapshot) {
	if snapshot.Generation < m.snapshot.Generation {
		return
	}
	if snapshot.Refreshing {
		m.banner = ""
	}
	m.snapshot = snapshot

	rows := make([]table.Row, 0, len(snapshot.Issues))
	for _, record := range snapshot.Issues {
		rows = append(rows, recordToRow(record))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
	m.updateTableSize()
	m.updateSelectionStyle()
}

func recordToRow(record service.Record) table.Row {
	return table.Row{
		record.Key,
		sizeMark(record.SizeClass),
		record.PriorityName(),
		record.StatusName(),
		record.TimeEstimateHuman,
		record.AssigneeName(),
		record.Summary(),
	}
}

func (m Model) selected() (service.Record, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.snapshot.Issues) {
		return service.Record{}, false
	}
	return m.snapshot.Issues[cursor], true
}

func (m Model) boardCmd(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(m.ctx); err != nil && !errors.Is(err, workspace.ErrStaleGeneration) {
			logrus.WithError(err).Debug("Board refresh failed")
		}
		return nil
	}
}

func (m Model) switchCmd(index int) tea.Cmd {
	if len(m.workspaces) == 0 {
		return nil
	}
	if index >= len(m.workspaces) {
		index = 0
	}
	return m.boardCmd(func(ctx context.Context) error {
		return m.board.SwitchTo(ctx, index)
	})
}

func (m Model) openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := m.open(url); err != nil {
			return errMsg{fmt.Errorf("failed to open %s: %w", url, err)}
		}
		return statusMsg("Opened " + url)
	}
}

func (m Model) toggleWorkCmd(record service.Record) tea.Cmd {
	if _, tracking := m.worker.Tracker().Elapsed(record.Key); tracking {
		return func() tea.Msg {
			worklog, err := m.worker.StopWork(m.ctx, record.Key, "")
			if err != nil {
				return errMsg{err}
			}
			spent := time.Duration(worklog.TimeSpentSeconds) * time.Second
			return statusMsg(fmt.Sprintf("Logged %s on %s", spent, record.Key))
		}
	}
	return func() tea.Msg {
		if err := m.worker.StartWork(m.ctx, record); err != nil {
			return errMsg{err}
		}
		if !record.IsAssigned() {
			if err := m.board.Refresh(m.ctx); err != nil && !errors.Is(err, workspace.ErrStaleGeneration) {
				logrus.WithError(err).Debug("Board refresh failed")
			}
		}
		return statusMsg("Tracking work on " + record.Key)
	}
}

func (m Model) transitionsCmd(key string) tea.Cmd {
	return func() tea.Msg {
		transitions, err := m.worker.Transitions(m.ctx, key)
		if err != nil {
			return errMsg{err}
		}
		return transitionsMsg{key: key, transitions: transitions}
	}
}

func (m Model) transitionCmd(key string, transition gojira.Transition) tea.Cmd {
	return func() tea.Msg {
		if err := m.worker.Transition(m.ctx, key, transition.ID); err != nil {
			return errMsg{err}
		}
		if err := m.board.Refresh(m.ctx); err != nil && !errors.Is(err, workspace.ErrStaleGeneration) {
			logrus.WithError(err).Debug("Board refresh failed")
		}
		return statusMsg(fmt.Sprintf("%s: %s", key, transition.Name))
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func openBrowser(url string) error {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	return exec.Command(opener, url).Start()
}

// View renders the model
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.banner != "" {
		s.WriteString(bannerStyle.Render(m.banner))
		s.WriteString("\n")
	} else if m.snapshot.Err != nil {
		s.WriteString(bannerStyle.Render(m.snapshot.Err.Error()))
		s.WriteString("\n")
	}

	pager := m.snapshot.Pager
	info := fmt.Sprintf("%s  issues %d-%d of %d", m.snapshot.Workspace.Query, pager.StartAt+min(1, len(m.snapshot.Issues)), pager.StartAt+len(m.snapshot.Issues), pager.Total)
	if m.snapshot.Refreshing {
		info = m.spinner.View() + " Loading " + m.snapshot.Workspace.Query
	}
	s.WriteString(infoStyle.Render(info))
	s.WriteString("\n")

	if changes := m.snapshot.Changes; changes.HasChanges() {
		s.WriteString(infoStyle.Render(fmt.Sprintf("Changes: %d new, %d changed, %d removed",
			len(changes.New), len(changes.Changed), len(changes.Removed))))
		s.WriteString("\n")
	}

	s.WriteString(m.table.View())
	s.WriteString("\n")

	s.WriteString(m.renderItemStatus())

	if m.transitionKey != "" {
		s.WriteString(m.renderTransitions())
	}

	if m.status != "" {
		s.WriteString(infoStyle.Render(m.status))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("←/→ page  tab/1-9 workspace  r refresh  o open  s start/stop work  t transition  q quit"))

	return s.String()
}

func (m Model) renderTabs() string {
	var tabs []string
	for i, ws := range m.workspaces {
		title := fmt.Sprintf("%d %s", i+1, ws.Title)
		if i == m.snapshot.Index {
			tabs = append(tabs, activeTab.Render(title))
		} else {
			tabs = append(tabs, tabStyle.Render(title))
		}
	}
	return headerStyle.Render("jironimo") + " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderItemStatus creates a status panel for the selected issue
func (m Model) renderItemStatus() string {
	record, ok := m.selected()
	if !ok {
		return ""
	}

	var s strings.Builder
	swatch := lipgloss.NewStyle().Foreground(colorFor(record.ColorClass)).Render("●")
	summary := record.Summary()
	if record.IsClosed {
		summary = closedStyle.Render(summary)
	}
	s.WriteString(summaryStyle.Render(fmt.Sprintf("%s %s %s", swatch, record.Key, summary)))
	s.WriteString("\n")
	s.WriteString(infoStyle.Render(m.account.IssueURL(record.Key)))
	s.WriteString("\n")

	if elapsed, tracking := m.worker.Tracker().Elapsed(record.Key); tracking {
		s.WriteString(trackingStyle.Render(fmt.Sprintf("Working for %s", elapsed.Truncate(time.Second))))
		s.WriteString("\n")
	}

	changes := m.snapshot.Changes
	switch {
	case changes.IsNew(record.Key):
		s.WriteString(newStyle.Render("NEW ITEM"))
		s.WriteString("\n")
	case changes.IsChanged(record.Key):
		s.WriteString(changedStyle.Render("CHANGED ITEM"))
		s.WriteString("\n")
		for _, change := range changes.Changed[record.Key] {
			s.WriteString(fmt.Sprintf("  • %s changed from '%s' to '%s'\n", change.Field, change.OldValue, change.NewValue))
		}
	}

	return s.String()
}

func (m Model) renderTransitions() string {
	var s strings.Builder
	s.WriteString(changedStyle.Render(fmt.Sprintf("Transition %s:", m.transitionKey)))
	s.WriteString("\n")
	for i, transition := range m.transitions {
		if i >= 9 {
			break
		}
		s.WriteString(fmt.Sprintf("  %d) %s\n", i+1, transition.Name))
	}
	s.WriteString(infoStyle.Render("  esc to cancel"))
	s.WriteString("\n")
	return s.String()
}

// updateTableSize updates the table size based on terminal dimensions
func (m *Model) updateTableSize() {
	rows := len(m.snapshot.Issues)
	tableHeight := max(min(rows, workspace.DefaultMaxResults), 1) + 1
	if m.height > 0 {
		tableHeight = min(tableHeight, max(m.height-14, 2))
	}
	m.table.SetHeight(tableHeight)
	m.updateColumnWidths()
}

// updateColumnWidths sizes the columns to their content and gives the remaining width to the summary
func (m *Model) updateColumnWidths() {
	if m.width <= 0 {
		return
	}

	titles := []string{"Key", "Size", "Priority", "Status", "Estimate", "Assignee", "Summary"}
	widths := make([]int, len(titles))
	for i, title := range titles {
		widths[i] = lipgloss.Width(title)
	}
	for _, row := range m.table.Rows() {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	// every column is padded by the cell style
	used := 0
	for _, width := range widths[:len(widths)-1] {
		used += width + 2
	}
	widths[len(widths)-1] = max(m.width-used-4, lipgloss.Width("Summary"))

	columns := make([]table.Column, len(titles))
	for i, title := range titles {
		columns[i] = table.Column{Title: title, Width: widths[i]}
	}
	m.table.SetColumns(columns)
}

// updateSelectionStyle colors the selection by the state of the selected issue
func (m *Model) updateSelectionStyle() {
	styles := table.DefaultStyles()

	backgroundColor := lipgloss.Color("240")
	if record, ok := m.selected(); ok {
		switch {
		case m.snapshot.Changes.IsNew(record.Key):
			backgroundColor = lipgloss.Color("22")
		case m.snapshot.Changes.IsChanged(record.Key):
			backgroundColor = lipgloss.Color("130")
		case record.IsClosed:
			backgroundColor = lipgloss.Color("236")
		}
	}

	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(backgroundColor).
		Bold(true)

	m.table.SetStyles(styles)
}
