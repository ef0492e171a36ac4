package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Dashboard panel indices.
const (
	panelIncidents = iota
	panelReminders
	panelMetrics
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	statusCounts map[string]int
	archiveSize  int
	dueReminders []reminderSnapshot
	metricsData  *metricsSnapshot

	// State.
	loading bool
	err     error
}

type reminderSnapshot struct {
	message string
	since   string
}

type metricsSnapshot struct {
	incidentsCreated   int
	actionsCompleted   int
	incidentsArchived  int
	remindersScheduled int
	eventCount         int
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	statusCounts map[string]int
	archiveSize  int
	dueReminders []reminderSnapshot
	metrics      *metricsSnapshot
	err          error
}

// tickMsg drives the periodic refresh of the reminder panel.
type tickMsg time.Time

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusPending    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	statusCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	dueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel:  panelIncidents,
		loading:      true,
		statusCounts: make(map[string]int),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(loadData, scheduleTick())
}

func scheduleTick() tea.Cmd {
	interval := 10 * time.Second
	if Config != nil && Config.PollInterval > 0 {
		interval = Config.PollInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(loadData, scheduleTick())

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusCounts = msg.statusCounts
		m.archiveSize = msg.archiveSize
		m.dueReminders = msg.dueReminders
		m.metricsData = msg.metrics
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" opsdesk Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	incidentsPanel := m.renderIncidentsPanel()
	remindersPanel := m.renderRemindersPanel()
	metricsPanel := m.renderMetricsPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		incidentsPanel = m.applyPanelStyle(panelIncidents, incidentsPanel, colWidth-4)
		remindersPanel = m.applyPanelStyle(panelReminders, remindersPanel, colWidth-4)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, incidentsPanel, remindersPanel, metricsPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		incidentsPanel = m.applyPanelStyle(panelIncidents, incidentsPanel, panelWidth)
		remindersPanel = m.applyPanelStyle(panelReminders, remindersPanel, panelWidth)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, incidentsPanel, remindersPanel, metricsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderIncidentsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Incidents"))
	b.WriteString("\n")

	if len(m.statusCounts) == 0 {
		b.WriteString("  No active incidents.")
	} else {
		order := []string{"Pending", "InProgress", "Completed"}
		for _, status := range order {
			count, ok := m.statusCounts[status]
			if !ok || count == 0 {
				continue
			}
			label := fmt.Sprintf("  %-12s %d", status, count)
			b.WriteString(styleForStatus(status).Render(label))
			b.WriteString("\n")
		}
		total := 0
		for _, c := range m.statusCounts {
			total += c
		}
		b.WriteString(fmt.Sprintf("\n  Active: %d", total))
	}

	b.WriteString(fmt.Sprintf("\n  Archived: %d", m.archiveSize))
	return b.String()
}

func (m dashboardModel) renderRemindersPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Reminders Due"))
	b.WriteString("\n")

	if len(m.dueReminders) == 0 {
		b.WriteString("  Nothing due.")
		return b.String()
	}

	for _, r := range m.dueReminders {
		b.WriteString(dueStyle.Render("  ! "))
		b.WriteString(fmt.Sprintf("%s (since %s)\n", r.message, r.since))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d due", len(m.dueReminders)))
	return b.String()
}

func (m dashboardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Metrics (7d)"))
	b.WriteString("\n")

	if m.metricsData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metricsData
	lines := []struct {
		label string
		value int
	}{
		{"Events", md.eventCount},
		{"Created", md.incidentsCreated},
		{"Actions done", md.actionsCompleted},
		{"Archived", md.incidentsArchived},
		{"Reminders", md.remindersScheduled},
	}

	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", l.label, l.value))
	}

	return b.String()
}

func styleForStatus(status string) lipgloss.Style {
	switch status {
	case "Pending":
		return statusPending
	case "InProgress":
		return statusInProgress
	case "Completed":
		return statusCompleted
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	result := dataLoadedMsg{
		statusCounts: make(map[string]int),
	}

	if Engine != nil {
		for _, inc := range Engine.Active() {
			result.statusCounts[string(inc.Status)]++
		}
		result.archiveSize = len(Engine.Archived())
	}

	if Scheduler != nil {
		for _, r := range Scheduler.Tick(time.Now()) {
			result.dueReminders = append(result.dueReminders, reminderSnapshot{
				message: r.Message,
				since:   r.Datetime.Format("15:04"),
			})
		}
	}

	if MetricsCalc != nil {
		since := time.Now().UTC().AddDate(0, 0, -7)
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metricsSnapshot{
			incidentsCreated:   metrics.IncidentsCreated,
			actionsCompleted:   metrics.ActionsCompleted,
			incidentsArchived:  metrics.IncidentsArchived,
			remindersScheduled: metrics.RemindersScheduled,
			eventCount:         metrics.EventCount,
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for incidents and reminders",
	Long: `Launch an interactive terminal dashboard showing incident status
counts, currently due reminders, and event-log metrics. The reminder
panel refreshes on the configured poll interval.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
