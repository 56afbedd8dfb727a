package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loopwire/acpbridge/internal/adminauth"
	"github.com/loopwire/acpbridge/internal/version"
)

// Screen represents the current screen.
type Screen int

const (
	ScreenPassphrase Screen = iota
	ScreenMain
	ScreenAuditLog
	ScreenPermissions
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	menuItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("#7C3AED")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(1, 2)
)

// App is the admin TUI's root bubbletea model. It gates every screen
// behind a local passphrase check and reads all bridge state over the
// admin HTTP listener rather than touching the audit database directly.
type App struct {
	client         *AdminClient
	passphraseHash string

	authenticated   bool
	passphraseInput string

	screen Screen
	cursor int
	width  int
	height int

	err error

	healthErr error

	auditLogList    *AuditLogListModel
	permissionsList *PermissionListModel
}

type healthMsg struct {
	err error
}

func (a *App) checkHealth() tea.Msg {
	return healthMsg{err: a.client.Healthz()}
}

// NewApp creates a new TUI application pointed at the admin listener's
// baseURL and gated by passphraseHash.
func NewApp(baseURL, passphraseHash string) *App {
	return &App{
		client:         NewAdminClient(baseURL),
		passphraseHash: passphraseHash,
		screen:         ScreenPassphrase,
	}
}

// Init initializes the app.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case healthMsg:
		a.healthErr = msg.err
		return a, nil
	}

	switch {
	case a.screen == ScreenAuditLog && a.auditLogList != nil:
		var cmd tea.Cmd
		a.auditLogList, cmd = a.auditLogList.Update(msg)
		return a, cmd
	case a.screen == ScreenPermissions && a.permissionsList != nil:
		var cmd tea.Cmd
		a.permissionsList, cmd = a.permissionsList.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.authenticated {
		return a.handlePassphraseKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q":
		if a.screen == ScreenMain {
			return a, tea.Quit
		}
	case "esc":
		if a.screen != ScreenMain {
			a.screen = ScreenMain
			a.cursor = 0
			a.err = nil
			return a, nil
		}
	}

	switch a.screen {
	case ScreenMain:
		return a.handleMainMenuKey(msg)
	case ScreenAuditLog:
		var cmd tea.Cmd
		a.auditLogList, cmd = a.auditLogList.Update(msg)
		return a, cmd
	case ScreenPermissions:
		var cmd tea.Cmd
		a.permissionsList, cmd = a.permissionsList.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handlePassphraseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "enter":
		if adminauth.VerifyPassphrase(a.passphraseInput, a.passphraseHash) {
			a.authenticated = true
			a.passphraseInput = ""
			a.err = nil
			a.screen = ScreenMain
			return a, a.checkHealth
		}
		a.err = fmt.Errorf("incorrect passphrase")
		a.passphraseInput = ""
	case "backspace":
		if len(a.passphraseInput) > 0 {
			a.passphraseInput = a.passphraseInput[:len(a.passphraseInput)-1]
		}
	default:
		if len(msg.String()) == 1 {
			a.passphraseInput += msg.String()
		}
	}
	return a, nil
}

func (a *App) handleMainMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < 2 {
			a.cursor++
		}
	case "enter":
		switch a.cursor {
		case 0: // Audit Log
			a.auditLogList = NewAuditLogListModel(a.client, a.width, a.height)
			a.screen = ScreenAuditLog
			a.cursor = 0
			return a, a.auditLogList.Init()
		case 1: // Permission Cache
			a.permissionsList = NewPermissionListModel(a.client, a.width, a.height)
			a.screen = ScreenPermissions
			a.cursor = 0
			return a, a.permissionsList.Init()
		case 2: // Quit
			return a, tea.Quit
		}
	case "r":
		return a, a.checkHealth
	}
	return a, nil
}

// View renders the UI.
func (a *App) View() string {
	if !a.authenticated {
		return a.viewPassphrase()
	}

	switch a.screen {
	case ScreenMain:
		return a.viewMain()
	case ScreenAuditLog:
		return a.viewAuditLog()
	case ScreenPermissions:
		return a.viewPermissions()
	}
	return ""
}

func (a *App) viewPassphrase() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bridge Admin"))
	b.WriteString("\n\n")

	if a.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", a.err)))
		b.WriteString("\n\n")
	}

	b.WriteString("Enter admin passphrase:\n\n")
	masked := strings.Repeat("*", len(a.passphraseInput))
	b.WriteString(boxStyle.Render(masked + "_"))
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("\n[Enter] Unlock  [Ctrl+C] Quit"))

	return b.String()
}

func (a *App) viewMain() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bridge Admin"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Version: %s\n\n", version.Version))

	menuItems := []string{"Audit Log", "Permission Cache", "Quit"}

	if a.cursor >= len(menuItems) {
		a.cursor = len(menuItems) - 1
	}

	for i, item := range menuItems {
		if i == a.cursor {
			b.WriteString(selectedItemStyle.Render("> " + item))
		} else {
			b.WriteString(menuItemStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if a.healthErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Bridge unreachable: %v", a.healthErr)))
	} else {
		b.WriteString(successStyle.Render("Bridge healthy"))
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("\n[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

func (a *App) viewAuditLog() string {
	if a.auditLogList == nil {
		return "Loading..."
	}
	return a.auditLogList.View()
}

func (a *App) viewPermissions() string {
	if a.permissionsList == nil {
		return "Loading..."
	}
	return a.permissionsList.View()
}
