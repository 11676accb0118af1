// Package chat provides the conversation view component for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/tui/messages"
	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/tui/styles"
	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
)

// View is the conversation view for one document.
type View struct {
	styles *styles.Styles

	conversation driving.ConversationService
	documentName string

	input   textinput.Model
	spinner spinner.Model

	width   int
	height  int
	waiting bool
	err     error
}

// NewView creates a new chat view.
func NewView(s *styles.Styles) *View {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about this document..."
	ti.CharLimit = 512
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &View{
		styles:  s,
		input:   ti,
		spinner: sp,
	}
}

// SetConversation binds the view to a conversation controller and
// kicks off the history load.
func (v *View) SetConversation(conv driving.ConversationService, documentName string) tea.Cmd {
	v.conversation = conv
	v.documentName = documentName
	v.err = nil
	v.waiting = false
	v.input.Reset()
	return tea.Batch(v.input.Focus(), v.loadHistory())
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return textinput.Blink
}

func (v *View) loadHistory() tea.Cmd {
	return func() tea.Msg {
		if v.conversation == nil {
			return messages.HistoryLoaded{Err: fmt.Errorf("conversation not available")}
		}
		err := v.conversation.LoadHistory(context.Background())
		return messages.HistoryLoaded{Err: err}
	}
}

func (v *View) send(text string) tea.Cmd {
	return func() tea.Msg {
		err := v.conversation.Send(context.Background(), text)
		return messages.MessageSent{Err: err}
	}
}

func (v *View) clear() tea.Cmd {
	return func() tea.Msg {
		err := v.conversation.Clear(context.Background())
		return messages.ConversationCleared{Err: err}
	}
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.input.Width = msg.Width - 10
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewLibrary}
			}
		case "enter":
			text := strings.TrimSpace(v.input.Value())
			if text == "" || v.waiting || v.conversation == nil {
				return v, nil
			}
			v.waiting = true
			v.err = nil
			v.input.Reset()
			return v, tea.Batch(v.send(text), v.spinner.Tick)
		case "ctrl+l":
			if v.conversation != nil && !v.waiting {
				return v, v.clear()
			}
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd

	case spinner.TickMsg:
		if !v.waiting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.HistoryLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil

	case messages.MessageSent:
		v.waiting = false
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil

	case messages.ConversationCleared:
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder

	title := "Chat"
	if v.documentName != "" {
		title = fmt.Sprintf("Chat - %s", v.documentName)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if v.conversation != nil {
		state := v.conversation.State()
		if state.IsLoadingHistory {
			b.WriteString(v.styles.Muted.Render("Loading conversation..."))
			b.WriteString("\n")
		}
		for i := range state.Messages {
			b.WriteString(v.renderMessage(&state.Messages[i]))
		}
	}

	if v.waiting {
		b.WriteString(v.spinner.View())
		b.WriteString(v.styles.Muted.Render(" thinking..."))
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.InputField.Render(v.input.View()))
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] send  [ctrl+l] clear conversation  [esc] back"))

	return b.String()
}

func (v *View) renderMessage(m *domain.Message) string {
	var b strings.Builder

	if m.Role == domain.RoleUser {
		b.WriteString(v.styles.User.Render("You: "))
	} else {
		b.WriteString(v.styles.Assistant.Render("Assistant: "))
	}
	b.WriteString(v.styles.Normal.Render(m.Content))
	if m.Pending {
		b.WriteString(v.styles.Muted.Render("  (sending)"))
	}
	b.WriteString("\n")

	if len(m.Citations) > 0 {
		pages := make([]string, len(m.Citations))
		for i, c := range m.Citations {
			pages[i] = fmt.Sprintf("%d", c.Page)
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  pages %s", strings.Join(pages, ", "))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Waiting reports whether a send is in flight.
func (v *View) Waiting() bool {
	return v.waiting
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// InputValue returns the current input text.
func (v *View) InputValue() string {
	return v.input.Value()
}
