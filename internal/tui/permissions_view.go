package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loopwire/acpbridge/internal/fsmediator"
)

// PermissionEntryItem adapts a fsmediator.CacheEntry to the bubbles/list
// item interface.
type PermissionEntryItem struct {
	entry fsmediator.CacheEntry
}

func (i PermissionEntryItem) Title() string       { return i.entry.Path }
func (i PermissionEntryItem) Description() string { return i.entry.Decision }
func (i PermissionEntryItem) FilterValue() string { return i.entry.Path }

type permissionsMsg struct {
	entries []fsmediator.CacheEntry
}

type permissionsErrMsg struct {
	err error
}

// PermissionListModel drives the read-only permission-cache view: every
// path the bridge has recorded a sticky allow/reject decision for.
type PermissionListModel struct {
	client *AdminClient
	list   list.Model
	err    error
}

// NewPermissionListModel creates a new permission cache list model bound
// to client, sized for a width x height terminal.
func NewPermissionListModel(client *AdminClient, width, height int) *PermissionListModel {
	l := list.New(nil, list.NewDefaultDelegate(), width-4, height-8)
	l.Title = "Permission Cache"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return &PermissionListModel{client: client, list: l}
}

// Init kicks off the first load.
func (m *PermissionListModel) Init() tea.Cmd {
	return m.loadPermissions
}

func (m *PermissionListModel) loadPermissions() tea.Msg {
	entries, err := m.client.FetchPermissions()
	if err != nil {
		return permissionsErrMsg{err}
	}
	return permissionsMsg{entries}
}

// Update handles bubbletea messages.
func (m *PermissionListModel) Update(msg tea.Msg) (*PermissionListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case permissionsMsg:
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = PermissionEntryItem{entry: entry}
		}
		m.list.SetItems(items)
		m.err = nil
		return m, nil

	case permissionsErrMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.loadPermissions
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m *PermissionListModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.list.View(),
		helpStyle.Render("\n  r: refresh • /: filter • esc: back"),
	)
}
