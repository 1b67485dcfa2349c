// Package tui renders a terminal dashboard for one user's jobs, polling
// the same scheduler interface the web console proxies.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/cluster/upstream"
)

const fetchTimeout = 10 * time.Second

type tickMsg time.Time
type snapshotMsg *cluster.UserSnapshot
type errMsg struct{ err error }

type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Pause   key.Binding
	Up      key.Binding
	Down    key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Refresh, k.Pause}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Refresh, k.Pause, k.Quit},
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	refreshStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the dashboard's bubbletea model.
type Model struct {
	client   *upstream.Client
	user     string
	interval time.Duration

	table table.Model
	help  help.Model

	snap        *cluster.UserSnapshot
	err         error
	paused      bool
	lastRefresh time.Time

	width  int
	height int
}

func NewModel(client *upstream.Client, user string, interval time.Duration) Model {
	columns := []table.Column{
		{Title: "Job", Width: 12},
		{Title: "Name", Width: 20},
		{Title: "Status", Width: 20},
		{Title: "Queue", Width: 12},
		{Title: "Submitted", Width: 19},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(s)

	return Model{
		client:   client,
		user:     user,
		interval: interval,
		table:    t,
		help:     help.New(),
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snap, err := m.client.UserStatus(ctx, m.user)
		if err != nil {
			return errMsg{err: err}
		}
		return snapshotMsg(snap)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.paused {
			return m, m.tickCmd()
		}
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case snapshotMsg:
		m.snap = msg
		m.err = nil
		m.lastRefresh = time.Now()
		m.table.SetRows(jobRows(msg.Jobs))
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return m, m.fetchCmd()
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("openlava web · %s", m.user))
	if m.paused {
		title = lipgloss.JoinHorizontal(lipgloss.Left, title, " ", pausedStyle.Render("[paused]"))
	}

	sections := []string{title, m.counterLine(), ""}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(m.err.Error()), "")
	}

	sections = append(sections, m.table.View(), m.statusLine(), m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) counterLine() string {
	if m.snap == nil {
		return labelStyle.Render("waiting for first refresh")
	}
	return counterLine(m.snap)
}

func (m Model) statusLine() string {
	if m.lastRefresh.IsZero() {
		return ""
	}
	return refreshStyle.Render("refreshed " + m.lastRefresh.Format("15:04:05"))
}

// counterLine lays the snapshot's jobs/slots counters out in one row,
// with the suspended split appended when the scheduler reports it.
func counterLine(snap *cluster.UserSnapshot) string {
	pair := func(label string, jobs, slots int64) string {
		return labelStyle.Render(label+" ") +
			valueStyle.Render(fmt.Sprintf("%d/%d", jobs, slots))
	}

	parts := []string{
		pair("Total", snap.TotalJobs, snap.TotalSlots),
		pair("Pending", snap.NumPendingJobs, snap.NumPendingSlots),
		pair("Running", snap.NumRunningJobs, snap.NumRunningSlots),
		pair("Suspended", snap.NumSuspendedJobs, snap.NumSuspendedSlots),
	}

	if snap.ClusterType == cluster.TypeOpenLava &&
		snap.NumUserSuspendedJobs != nil && snap.NumSystemSuspendedJobs != nil {
		parts = append(parts,
			labelStyle.Render("(user ")+
				valueStyle.Render(fmt.Sprintf("%d", *snap.NumUserSuspendedJobs))+
				labelStyle.Render(" / system ")+
				valueStyle.Render(fmt.Sprintf("%d", *snap.NumSystemSuspendedJobs))+
				labelStyle.Render(")"))
	}

	parts = append(parts, labelStyle.Render("Max jobs ")+
		valueStyle.Render(cluster.Sentinels.Format(snap.ClusterType, "max_jobs", float64(snap.MaxJobs))))

	return strings.Join(parts, "  ")
}

func jobRows(jobs []cluster.JobSummary) []table.Row {
	rows := make([]table.Row, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, table.Row{
			job.DisplayID(),
			job.Name,
			job.Status.Friendly,
			job.Queue,
			cluster.FormatTime(job.SubmitTime),
		})
	}
	return rows
}

// Run blocks on the dashboard until the user quits.
func Run(client *upstream.Client, user string, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	program := tea.NewProgram(NewModel(client, user, interval), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}
