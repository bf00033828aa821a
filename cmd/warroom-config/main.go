// Command warroom-config is a terminal editor for config.json.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stlalpha/warroom/internal/config"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(22)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("45"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dirtyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// field indexes into the editor rows.
const (
	fieldDataPath = iota
	fieldDebug
	fieldBackupEnabled
	fieldBackupSchedule
	fieldBackupDir
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Data path",
	"Debug logging",
	"Backups enabled",
	"Backup schedule",
	"Backup directory",
}

type editorMode int

const (
	modeNavigate editorMode = iota
	modeEdit
)

// Model is the BubbleTea model for the config editor.
type Model struct {
	configPath string
	cfg        config.Config
	saved      config.Config

	cursor    int
	mode      editorMode
	textInput textinput.Model
	message   string
}

func newModel(configPath string, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		configPath: configPath,
		cfg:        cfg,
		saved:      cfg,
		textInput:  ti,
		message:    "Ready - Enter=Edit/Toggle  F2=Save  F10=Exit",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.mode == modeEdit {
		switch keyMsg.String() {
		case "enter":
			m.applyEdit(m.textInput.Value())
			m.mode = modeNavigate
			return m, nil
		case "esc":
			m.mode = modeNavigate
			m.message = "Edit cancelled"
			return m, nil
		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd
		}
	}

	switch keyMsg.String() {
	case "f10", "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < fieldCount-1 {
			m.cursor++
		}
	case "enter", " ":
		switch m.cursor {
		case fieldDebug:
			m.cfg.Debug = !m.cfg.Debug
		case fieldBackupEnabled:
			m.cfg.Backup.Enabled = !m.cfg.Backup.Enabled
		default:
			m.textInput.SetValue(m.fieldValue(m.cursor))
			m.textInput.CursorEnd()
			m.textInput.Focus()
			m.mode = modeEdit
			m.message = "Editing - Enter=Apply  Esc=Cancel"
		}
	case "f2":
		if err := config.Save(m.configPath, m.cfg); err != nil {
			m.message = "Save failed: " + err.Error()
		} else {
			m.saved = m.cfg
			m.message = "Configuration saved"
		}
	}
	return m, nil
}

func (m *Model) applyEdit(value string) {
	switch m.cursor {
	case fieldDataPath:
		m.cfg.DataPath = value
	case fieldBackupSchedule:
		m.cfg.Backup.Schedule = value
	case fieldBackupDir:
		m.cfg.Backup.Dir = value
	}
	m.message = fieldLabels[m.cursor] + " updated"
}

func (m Model) fieldValue(i int) string {
	switch i {
	case fieldDataPath:
		return m.cfg.DataPath
	case fieldDebug:
		return fmt.Sprintf("%t", m.cfg.Debug)
	case fieldBackupEnabled:
		return fmt.Sprintf("%t", m.cfg.Backup.Enabled)
	case fieldBackupSchedule:
		return m.cfg.Backup.Schedule
	case fieldBackupDir:
		return m.cfg.Backup.Dir
	}
	return ""
}

func (m Model) View() string {
	s := titleStyle.Render("WARROOM Configuration") + "\n\n"

	for i := 0; i < fieldCount; i++ {
		label := labelStyle.Render(fieldLabels[i])
		if i == m.cursor && m.mode == modeEdit {
			s += fmt.Sprintf("  %s %s\n", label, m.textInput.View())
			continue
		}
		value := m.fieldValue(i)
		if i == m.cursor {
			s += fmt.Sprintf("  %s %s\n", label, selectedStyle.Render(" "+value+" "))
		} else {
			s += fmt.Sprintf("  %s %s\n", label, valueStyle.Render(value))
		}
	}

	s += "\n"
	if m.cfg != m.saved {
		s += dirtyStyle.Render("  * unsaved changes") + "\n"
	}
	s += statusStyle.Render("  " + m.message)
	return s
}

func main() {
	configPath := flag.String("config", "configs", "path to the configuration directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	p := tea.NewProgram(newModel(*configPath, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running configuration tool: %v", err)
	}
}
