package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type DashboardModel struct {
	Client *Client
	Table  table.Model
	Health *Health
	Status string
	Err    error
}

type refreshMsg struct {
	backups []Backup
	health  *Health
	err     error
}

type actionDoneMsg struct {
	status string
	err    error
}

func NewDashboardModel(c *Client, width, height int) DashboardModel {
	columns := []table.Column{
		{Title: "ID", Width: 36},
		{Title: "Type", Width: 12},
		{Title: "Status", Width: 12},
		{Title: "Records", Width: 8},
		{Title: "Size", Width: 10},
		{Title: "Created", Width: 19},
	}
	if height < 14 {
		height = 14
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height-12),
	)
	sStyle := table.DefaultStyles()
	sStyle.Header = sStyle.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	sStyle.Selected = sStyle.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(sStyle)

	return DashboardModel{Client: c, Table: t}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.refreshCmd
}

func (m DashboardModel) refreshCmd() tea.Msg {
	backups, err := m.Client.ListBackups()
	if err != nil {
		return refreshMsg{err: err}
	}
	health, err := m.Client.BackupHealth()
	if err != nil {
		return refreshMsg{backups: backups, err: err}
	}
	return refreshMsg{backups: backups, health: health}
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.refreshCmd
		case "b":
			return m, func() tea.Msg {
				if err := m.Client.CreateBackup(); err != nil {
					return actionDoneMsg{err: err}
				}
				return actionDoneMsg{status: "backup started"}
			}
		case "v":
			selected := m.Table.SelectedRow()
			if len(selected) > 0 {
				id := selected[0]
				return m, func() tea.Msg {
					if err := m.Client.ValidateBackup(id); err != nil {
						return actionDoneMsg{err: err}
					}
					return actionDoneMsg{status: "validation passed: " + id}
				}
			}
		case "q":
			return m, tea.Quit
		}

	case refreshMsg:
		m.Err = msg.err
		m.Health = msg.health
		rows := make([]table.Row, 0, len(msg.backups))
		for _, b := range msg.backups {
			rows = append(rows, table.Row{
				b.ID, b.Type, b.Status,
				fmt.Sprintf("%d", b.RecordCount),
				humanSize(b.FileSize),
				b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		m.Table.SetRows(rows)

	case actionDoneMsg:
		m.Err = msg.err
		m.Status = msg.status
		if msg.err == nil {
			return m, m.refreshCmd
		}
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MedStock Backups") + "\n\n")
	b.WriteString(m.Table.View())
	b.WriteString("\n\n")
	b.WriteString(m.healthView())
	b.WriteString("\n")
	b.WriteString(blurredStyle.Render("'r' refresh, 'b' new backup, 'v' validate selected, 'q' quit"))
	if m.Status != "" {
		b.WriteString("\n" + focusedStyle.Render(m.Status))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}

func (m DashboardModel) healthView() string {
	if m.Health == nil {
		return blurredStyle.Render("health: unavailable")
	}
	h := m.Health
	last := "never"
	if h.LastBackupAt != nil {
		last = h.LastBackupAt.Local().Format(time.RFC822)
	}
	line := fmt.Sprintf("last backup %s | streak %d | failures(30d) %d | storage %s / %s",
		last, h.SuccessStreak, h.Failures30d, humanSize(h.StorageUsed), humanSize(h.StorageTotal))
	if len(h.Alerts) == 0 {
		return line
	}
	return line + "\n" + alertStyle("alerts: "+strings.Join(h.Alerts, "; "))
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1fGB", float64(n)/float64(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
