package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfchat/internal/models"
	"pdfchat/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	statsStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	chatStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	session   *session.Session
	exportDir string
	input     textinput.Model
	viewport  viewport.Model
	status    string
	ready     bool
}

// New creates the chat model for an active session.
func New(s *session.Session, exportDir string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your document and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		session:   s,
		exportDir: exportDir,
		input:     ti,
		viewport:  vp,
		status:    "Document loaded. Ask a question.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + stats, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.SetValue("")
			answer, err := m.session.Ask(context.Background(), question)
			if err != nil {
				// the question is not recorded; the user may resubmit
				m.status = "Error: " + err.Error()
			} else {
				m.status = fmt.Sprintf("Answered (%d characters)", len(answer))
			}
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		case "ctrl+e":
			path, err := m.session.ExportTranscript(m.exportDir)
			if err != nil {
				m.status = "Export failed: " + err.Error()
			} else {
				m.status = "Transcript saved to " + path
			}
			return m, nil
		case "ctrl+r":
			if err := m.session.Reset(); err != nil {
				m.status = "Reset failed: " + err.Error()
				return m, nil
			}
			m.viewport.SetContent(m.renderTranscript())
			m.status = "Session reset."
			return m, tea.Quit
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	stats := m.session.Stats()
	header := headerStyle.Render("pdfchat: " + stats.Title)
	statsLine := statsStyle.Render(fmt.Sprintf(
		"pages: %d  chunks: %d  words: %d  questions: %d  (ctrl+e export, ctrl+r reset, ctrl+c quit)",
		stats.Pages, stats.Chunks, stats.Words, stats.Questions))
	chat := chatStyle.Render(m.viewport.View())
	input := inputStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + statsLine + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	turns := m.session.Transcript()
	if len(turns) == 0 {
		return "Start the conversation by asking a question."
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := botStyle.Render("Bot")
		if turn.Role == models.RoleUser {
			label = userStyle.Render("You")
		}
		b.WriteString(fmt.Sprintf("%s (%s): %s", label, turn.Timestamp.Format(models.TurnTimeFormat), turn.Text))
	}
	return b.String()
}

// Run starts the chat interface and blocks until the user quits.
func Run(s *session.Session, exportDir string) error {
	p := tea.NewProgram(New(s, exportDir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
