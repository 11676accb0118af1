// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewLibrary is the document list view.
	ViewLibrary ViewType = iota
	// ViewChat is the conversation view for one document.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewLibrary:
		return "library"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// DocumentsRefreshed signals a library refresh completed.
type DocumentsRefreshed struct {
	Err error
}

// DocumentUploaded signals an upload from the path prompt completed.
type DocumentUploaded struct {
	Name string
	Err  error
}

// DocumentDeleted signals a document delete completed.
type DocumentDeleted struct {
	ID  string
	Err error
}

// DocumentReprocessed signals an embedding reprocess was requested.
type DocumentReprocessed struct {
	ID  string
	Err error
}

// PollTick drives periodic re-reads of controller state while
// background work is in flight.
type PollTick struct{}

// ChatOpened signals a document was chosen for conversation.
type ChatOpened struct {
	DocumentID string
}

// HistoryLoaded signals the stored conversation finished loading.
type HistoryLoaded struct {
	Err error
}

// MessageSent signals a send round-trip completed.
type MessageSent struct {
	Err error
}

// ConversationCleared signals the conversation was wiped.
type ConversationCleared struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
