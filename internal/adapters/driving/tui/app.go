package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/tui/messages"
	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/tui/styles"
	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/tui/views/chat"
	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/tui/views/library"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// libraryView is the document list view.
	libraryView *library.View

	// chatView is the conversation view for the selected document.
	chatView *chat.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		libraryView: library.NewView(s, ports.Library),
		chatView:    chat.NewView(s),
		currentView: messages.ViewLibrary,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("docpilot - Chat with your PDFs"),
		a.libraryView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.libraryView.SetDimensions(msg.Width, msg.Height)
		a.chatView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewLibrary:
			a.libraryView, cmd = a.libraryView.Update(msg)
			a.err = a.libraryView.Err()
			return a, cmd
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
			a.err = a.chatView.Err()
			return a, cmd
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewLibrary
			}
			return a, nil
		}
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ChatOpened:
		conv := a.ports.NewConversation(msg.DocumentID)
		name := msg.DocumentID
		for _, d := range a.ports.Library.Documents() {
			if d.ID == msg.DocumentID {
				name = d.OriginalName
				break
			}
		}
		a.currentView = messages.ViewChat
		return a, tea.Batch(a.chatView.SetConversation(conv, name), a.chatView.Init())

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the active view.
	switch a.currentView {
	case messages.ViewLibrary:
		a.libraryView, cmd = a.libraryView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewLibrary:
		return a.libraryView.View()
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.libraryView.View()
	}
}

func (a *App) viewHelp() string {
	return `Help

Library:
  j/k, ↑/↓    Navigate documents
  enter       Open chat for document
  u           Upload a PDF by path
  d           Delete document
  p           Reprocess embeddings
  r           Reload list
  q           Quit

Chat:
  (type)      Enter question
  enter       Send
  ctrl+l      Clear conversation
  esc         Back to library

[esc] back to library`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.libraryView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
}
