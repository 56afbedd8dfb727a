package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loopwire/acpbridge/internal/audit"
)

// AuditRecordItem adapts an audit.Record to the bubbles/list item
// interface.
type AuditRecordItem struct {
	rec *audit.Record
}

func (i AuditRecordItem) Title() string {
	status := "✓"
	if i.rec.Error != "" {
		status = "✗"
	}
	return fmt.Sprintf("%s %s", status, i.rec.Method)
}

func (i AuditRecordItem) Description() string {
	return fmt.Sprintf("%s | %dms", i.rec.CreatedAt.Format("2006-01-02 15:04:05"), i.rec.DurationMs)
}

func (i AuditRecordItem) FilterValue() string { return i.rec.Method }

type auditLogMsg struct {
	records []*audit.Record
}

type auditLogErrMsg struct {
	err error
}

// AuditLogListModel drives the audit log list screen. It loads the most
// recent records from the admin listener when opened and again on "r",
// keeping those that match the active glob filter.
type AuditLogListModel struct {
	client  *AdminClient
	matcher *Matcher
	list    list.Model
	err     error
	limit   int
	filter  string
}

// NewAuditLogListModel creates a new audit log list model bound to
// client, sized for a width x height terminal.
func NewAuditLogListModel(client *AdminClient, width, height int) *AuditLogListModel {
	l := list.New(nil, list.NewDefaultDelegate(), width-4, height-8)
	l.Title = "Audit Log"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)

	return &AuditLogListModel{
		client:  client,
		matcher: NewMatcher(),
		list:    l,
		limit:   100,
	}
}

// Init kicks off the first load.
func (m *AuditLogListModel) Init() tea.Cmd {
	return m.loadAuditLog
}

func (m *AuditLogListModel) loadAuditLog() tea.Msg {
	records, err := m.client.FetchAuditLog(m.limit, "")
	if err != nil {
		return auditLogErrMsg{err}
	}
	return auditLogMsg{records}
}

// SetMethodFilter restricts subsequent reloads to records whose method
// matches the glob pattern, or clears the filter when pattern is empty.
func (m *AuditLogListModel) SetMethodFilter(pattern string) {
	m.filter = pattern
}

// Update handles bubbletea messages.
func (m *AuditLogListModel) Update(msg tea.Msg) (*AuditLogListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case auditLogMsg:
		filtered := msg.records
		if m.filter != "" {
			filtered = nil
			for _, rec := range msg.records {
				matched, err := m.matcher.Match(m.filter, rec.Method)
				if err != nil {
					m.err = err
					return m, nil
				}
				if matched {
					filtered = append(filtered, rec)
				}
			}
		}
		items := make([]list.Item, len(filtered))
		for i, rec := range filtered {
			items[i] = AuditRecordItem{rec: rec}
		}
		m.list.SetItems(items)
		m.err = nil
		return m, nil

	case auditLogErrMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.loadAuditLog
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m *AuditLogListModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.list.View(),
		helpStyle.Render("\n  r: refresh • esc: back"),
	)
}

// SelectedRecord returns the currently highlighted audit record, if any.
func (m *AuditLogListModel) SelectedRecord() *audit.Record {
	if item, ok := m.list.SelectedItem().(AuditRecordItem); ok {
		return item.rec
	}
	return nil
}
