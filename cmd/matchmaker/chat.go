package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/a-h/matchmaker/client"
	"github.com/a-h/matchmaker/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type ChatCommand struct {
	ServerURL   string `help:"The URL of the matchmaker server." env:"MATCHMAKER_SERVER_URL" default:"http://localhost:9020"`
	APIKey      string `help:"The API key for the matchmaker server, used with --save-profile." env:"MATCHMAKER_API_KEY" default:""`
	SaveProfile bool   `help:"Store summaries as the profile of the API key's user." default:"false"`
}

func (c ChatCommand) Run(ctx context.Context) (err error) {
	conv := &conversation{
		client:      client.New(c.ServerURL, c.APIKey),
		saveProfile: c.SaveProfile,
	}
	p := tea.NewProgram(newModel(ctx, conv))
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

type chatClient interface {
	ChatPost(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error)
	ProfilePut(ctx context.Context, req models.ProfilePutRequest) (models.Profile, error)
}

// conversation holds the history sent with each turn. The server is stateless,
// so the whole history goes with every request.
type conversation struct {
	client      chatClient
	saveProfile bool
	history     []models.ChatMessage
	// summaries holds the indices of history entries that were summaries.
	summaries map[int]bool
}

// turnMsg is the result of a single chat turn.
type turnMsg struct {
	history   []models.ChatMessage
	summaries map[int]bool
	saved     bool
	err       error
}

func (c *conversation) send(ctx context.Context, text string) (msg turnMsg) {
	req := models.ChatPostRequest{
		Messages: append(slices.Clone(c.history), models.ChatMessage{Role: models.RoleUser, Content: text}),
	}
	resp, err := c.client.ChatPost(ctx, req)
	if err != nil {
		return turnMsg{history: c.history, summaries: c.summaries, err: err}
	}
	c.history = append(req.Messages, models.ChatMessage{Role: resp.Role, Content: resp.Content})
	if resp.GeneratesSummary {
		if c.summaries == nil {
			c.summaries = make(map[int]bool)
		}
		c.summaries[len(c.history)-1] = true
		if c.saveProfile {
			if _, err = c.client.ProfilePut(ctx, models.ProfilePutRequest{Summary: resp.Summary}); err != nil {
				return turnMsg{history: c.history, summaries: c.summaries, err: fmt.Errorf("failed to save profile: %w", err)}
			}
			msg.saved = true
		}
	}
	msg.history = c.history
	msg.summaries = c.summaries
	return msg
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Green       = lipgloss.Color("#50fa7b")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
	Yellow      = lipgloss.Color("#f1fa8c")
)

var headerStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Margin(1).Padding(1)

var header = `matchmaker

Say hello to start. Press esc to quit.`

var baseMessageStyle = lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background)

var roleToStyle = map[models.Role]lipgloss.Style{
	models.RoleSystem:    baseMessageStyle.Foreground(Comment),
	models.RoleUser:      baseMessageStyle.Foreground(Pink),
	models.RoleAssistant: baseMessageStyle.Foreground(Cyan),
}

var summaryStyle = baseMessageStyle.Foreground(Green).Border(lipgloss.RoundedBorder()).BorderForeground(Yellow)

var roleToIcon = map[models.Role]string{
	models.RoleSystem:    "⚙️",
	models.RoleUser:      "🙂",
	models.RoleAssistant: "💜",
}

var statusStyle = lipgloss.NewStyle().Foreground(Comment).MarginLeft(1)
var errorStyle = lipgloss.NewStyle().Foreground(Red).MarginLeft(1)

func formatMessage(msg models.ChatMessage, isSummary bool, width int) string {
	style, ok := roleToStyle[msg.Role]
	if !ok {
		return msg.Content
	}
	icon, ok := roleToIcon[msg.Role]
	if !ok {
		icon = "🤷"
	}
	if isSummary {
		style = summaryStyle
		icon = "📝"
	}
	wrapped := wordwrap.String(strings.TrimSpace(icon+" "+msg.Content), width)
	return style.Render(wrapped)
}

type model struct {
	ctx      context.Context
	conv     *conversation
	viewport viewport.Model
	textarea textarea.Model
	width    int
	waiting  bool
	status   string
	err      error
}

func newModel(ctx context.Context, conv *conversation) model {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 1000
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)
	vp.SetContent(headerStyle.Render(header))

	return model{
		ctx:      ctx,
		conv:     conv,
		textarea: ta,
		viewport: vp,
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return m.conv.send(m.ctx, text)
	}
}

func (m model) render(history []models.ChatMessage, summaries map[int]bool) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(header))
	sb.WriteString("\n")
	for i, cm := range history {
		sb.WriteString(formatMessage(cm, summaries[i], m.width-6))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case turnMsg:
		m.waiting = false
		m.err = msg.err
		m.status = ""
		if msg.saved {
			m.status = "Profile saved."
		}
		m.viewport.SetContent(m.render(msg.history, msg.summaries))
		m.viewport.GotoBottom()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 4
		m.textarea.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.textarea.Value())
			if v == "" || m.waiting {
				return m, nil
			}
			m.textarea.Reset()
			m.waiting = true
			m.err = nil
			m.status = "Thinking..."
			pending := append(slices.Clone(m.conv.history), models.ChatMessage{Role: models.RoleUser, Content: v})
			m.viewport.SetContent(m.render(pending, m.conv.summaries))
			m.viewport.GotoBottom()
			return m, m.sendCmd(v)
		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
	case cursor.BlinkMsg:
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m model) View() string {
	status := statusStyle.Render(m.status)
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}
	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), status, m.textarea.View()) + "\n\n"
}
