package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/storage"
)

// tickMsg is sent when the refresh timer fires.
type tickMsg time.Time

// refreshMsg is sent when the current section needs to be recomputed.
type refreshMsg struct{}

// backupDoneMsg reports the outcome of a backup started with 'b'.
type backupDoneMsg struct {
	path string
	err  error
}

// BackupWriter writes a full backup to a file.
type BackupWriter interface {
	WriteFile(path string) (*storage.Backup, error)
}

// DashboardModel is the main bubbletea model for the dashboard.
type DashboardModel struct {
	renderer   *renderer
	backups    BackupWriter
	backupsDir string

	// Rendered sections and their failures
	current Section
	views   map[Section]string
	errs    map[Section]error

	// UI state
	width      int
	height     int
	message    string
	messageExp time.Time

	// Configuration
	refreshInterval time.Duration
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Revenue         RevenueSource
	Videos          VideoSource
	Analytics       AnalyticsSource
	Calendar        CalendarSource
	Backups         BackupWriter
	BackupsDir      string
	Currency        string
	RefreshInterval time.Duration
	Now             func() time.Time
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = 30 * time.Second
	}
	if config.Currency == "" {
		config.Currency = model.DefaultCurrency
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &DashboardModel{
		renderer: &renderer{
			revenue:   config.Revenue,
			videos:    config.Videos,
			analytics: config.Analytics,
			calendar:  config.Calendar,
			currency:  config.Currency,
			now:       config.Now,
		},
		backups:         config.Backups,
		backupsDir:      config.BackupsDir,
		views:           make(map[Section]string),
		errs:            make(map[Section]error),
		refreshInterval: config.RefreshInterval,
	}
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.refreshCmd(),
	)
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Clear expired messages
		if !m.messageExp.IsZero() && time.Time(msg).After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		m.load(m.current)
		return m, m.tickCmd()

	case refreshMsg:
		m.load(m.current)
		return m, nil

	case backupDoneMsg:
		if msg.err != nil {
			m.setMessage("Backup failed: "+msg.err.Error(), 5*time.Second)
		} else {
			m.setMessage("Backup written to "+msg.path, 5*time.Second)
		}
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "1", "2", "3", "4", "5":
		m.current = Section(key[0] - '1')
		m.load(m.current)
		return m, nil

	case "tab":
		m.current = (m.current + 1) % sectionCount
		m.load(m.current)
		return m, nil

	case "n":
		m.setMessage(quickAddHint(m.current), 5*time.Second)
		return m, nil

	case "b":
		if m.backups == nil || m.backupsDir == "" {
			m.setMessage("Backups are not configured", 3*time.Second)
			return m, nil
		}
		m.setMessage("Writing backup...", 5*time.Second)
		return m, m.backupCmd()

	case "r":
		m.load(m.current)
		m.setMessage("Refreshed", time.Second)
		return m, nil
	}

	return m, nil
}

func quickAddHint(s Section) string {
	switch s {
	case SectionVideos:
		return "Use 'creatorbook video add TITLE --category NAME' to add a video"
	case SectionCalendar:
		return "Use 'creatorbook calendar add TITLE --date YYYY-MM-DD' to add an event"
	default:
		return "Use 'creatorbook revenue add AMOUNT --platform NAME' to record a payment"
	}
}

// load recomputes one section. A failure only replaces that section.
func (m *DashboardModel) load(s Section) {
	var fn func() (string, error)
	switch s {
	case SectionOverview:
		fn = m.renderer.overview
	case SectionRevenue:
		fn = m.renderer.revenueSection
	case SectionVideos:
		fn = m.renderer.videosSection
	case SectionAnalytics:
		fn = m.renderer.analyticsSection
	case SectionCalendar:
		fn = m.renderer.calendarSection
	default:
		return
	}

	out, err := Render(s, fn)
	if err != nil {
		logging.Warn("section failed", logging.KeySection, s.String(), logging.KeyError, err)
		m.errs[s] = err
		delete(m.views, s)
		return
	}
	delete(m.errs, s)
	m.views[s] = out
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{m.renderHeader(), m.renderTabs()}

	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	box := StyleSectionBox
	body, ok := m.views[m.current]
	if err := m.errs[m.current]; err != nil {
		box = StyleErrorBox
		body = ReloadPlaceholder(err)
	} else if !ok {
		body = StyleSubtitle.Render("Loading...")
	}
	sections = append(sections, box.Width(max(m.width-4, 20)).Render(body))

	// Help bar
	sections = append(sections, HelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the dashboard header.
func (m *DashboardModel) renderHeader() string {
	title := StyleTitle.Render("creatorbook")
	now := m.renderer.now().Format("Mon Jan 2, 15:04")
	timeStr := StyleSubtitle.Render(now)

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", timeStr)
}

func (m *DashboardModel) renderTabs() string {
	tabs := make([]string, sectionCount)
	for s := Section(0); s < sectionCount; s++ {
		label := fmt.Sprintf("%d %s", s+1, s)
		if s == m.current {
			tabs[s] = StyleActiveTab.Render(label)
		} else {
			tabs[s] = StyleTab.Render(label)
		}
	}
	return strings.Join(tabs, " ")
}

// setMessage sets a temporary message.
func (m *DashboardModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = m.renderer.now().Add(duration)
}

// tickCmd returns a command that sends a tick message.
func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd returns a command that sends a refresh message.
func (m *DashboardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{}
	}
}

func (m *DashboardModel) backupCmd() tea.Cmd {
	path := filepath.Join(m.backupsDir, storage.FileName(m.renderer.now()))
	return func() tea.Msg {
		_, err := m.backups.WriteFile(path)
		return backupDoneMsg{path: path, err: err}
	}
}

// Run starts the dashboard TUI.
func Run(config DashboardConfig) error {
	p := tea.NewProgram(NewDashboardModel(config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
