// Package library provides the document list view component for the TUI.
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/tui/messages"
	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/tui/styles"
	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
)

// tickInterval is how often the view re-reads controller state while
// the background poller is running.
const tickInterval = time.Second

// View is the document library view.
type View struct {
	styles  *styles.Styles
	library driving.LibraryService

	documents    []domain.Document
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error

	uploadInput textinput.Model
	uploading   bool
}

// NewView creates a new library view.
func NewView(s *styles.Styles, library driving.LibraryService) *View {
	input := textinput.New()
	input.Placeholder = "path to a PDF file"
	input.Prompt = "Upload: "

	return &View{
		styles:      s,
		library:     library,
		uploadInput: input,
	}
}

// Init starts the first load and the state tick.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.refresh(), tick())
}

// refresh returns a command that reloads the document list.
func (v *View) refresh() tea.Cmd {
	return func() tea.Msg {
		if v.library == nil {
			return messages.DocumentsRefreshed{Err: fmt.Errorf("library service not available")}
		}
		err := v.library.Refresh(context.Background(), true)
		return messages.DocumentsRefreshed{Err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return messages.PollTick{}
	})
}

// Update handles messages for the library view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsRefreshed:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.err = nil
			v.syncDocuments()
		}
		return v, nil

	case messages.PollTick:
		// The controller's poller updates state in the background; the
		// tick just pulls the latest snapshot into the view.
		v.syncDocuments()
		return v, tick()

	case messages.DocumentUploaded:
		if msg.Err != nil {
			v.err = fmt.Errorf("upload %s: %w", msg.Name, msg.Err)
		} else {
			v.err = nil
		}
		v.syncDocuments()
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
		}
		v.syncDocuments()
		return v, nil

	case messages.DocumentReprocessed:
		if msg.Err != nil {
			v.err = msg.Err
		}
		v.syncDocuments()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.uploading {
		return v.handleUploadPromptKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if doc := v.SelectedDocument(); doc != nil {
			docID := doc.ID
			return v, func() tea.Msg {
				return messages.ChatOpened{DocumentID: docID}
			}
		}
	case "d":
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.deleteDocument(doc.ID)
		}
	case "p":
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.reprocessDocument(doc.ID)
		}
	case "u":
		v.uploading = true
		v.uploadInput.SetValue("")
		return v, v.uploadInput.Focus()
	case "r":
		v.loading = true
		return v, v.refresh()
	case "q":
		return v, tea.Quit
	case "?":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	}

	return v, nil
}

func (v *View) handleUploadPromptKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.uploading = false
		v.uploadInput.Blur()
		return v, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(v.uploadInput.Value())
		if path == "" {
			return v, nil
		}
		v.uploading = false
		v.uploadInput.Blur()
		return v, v.uploadDocument(path)
	}

	var cmd tea.Cmd
	v.uploadInput, cmd = v.uploadInput.Update(msg)
	return v, cmd
}

func (v *View) uploadDocument(path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)

		f, err := os.Open(path)
		if err != nil {
			return messages.DocumentUploaded{Name: name, Err: fmt.Errorf("open file: %w", err)}
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return messages.DocumentUploaded{Name: name, Err: fmt.Errorf("stat file: %w", err)}
		}

		contentType := "application/octet-stream"
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			contentType = domain.PDFContentType
		}

		_, err = v.library.Upload(context.Background(), name, contentType, f, info.Size())
		return messages.DocumentUploaded{Name: name, Err: err}
	}
}

func (v *View) deleteDocument(id string) tea.Cmd {
	return func() tea.Msg {
		err := v.library.Delete(context.Background(), id)
		return messages.DocumentDeleted{ID: id, Err: err}
	}
}

func (v *View) reprocessDocument(id string) tea.Cmd {
	return func() tea.Msg {
		err := v.library.Reprocess(context.Background(), id)
		return messages.DocumentReprocessed{ID: id, Err: err}
	}
}

// syncDocuments pulls the latest snapshot and clamps the selection.
func (v *View) syncDocuments() {
	if v.library == nil {
		return
	}
	v.documents = v.library.Documents()
	if v.selected >= len(v.documents) {
		v.selected = len(v.documents) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
	v.adjustScroll()
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// Title, separator, help, and padding take fixed lines.
	available := v.height - 7
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the library view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	if v.loading && len(v.documents) == 0 {
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.uploading {
		b.WriteString(v.uploadInput.View())
		b.WriteString("\n\n")
	}

	if len(v.documents) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents yet. Upload one with: docpilot document upload <file>"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderDocument(i, &v.documents[i]))
		b.WriteString("\n")
	}

	if len(v.documents) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.documents)),
			len(v.documents))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := doc.OriginalName
	if name == "" {
		name = doc.ID
	}
	maxNameLen := v.width/2 - 4
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	status := v.renderStatus(doc)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxNameLen, name, statusText(doc)))
	}

	return v.styles.Normal.Render(indicator) +
		v.styles.Normal.Render(fmt.Sprintf("%-*s  ", maxNameLen, name)) +
		status
}

func (v *View) renderStatus(doc *domain.Document) string {
	text := statusText(doc)
	switch doc.EmbeddingStatus {
	case domain.EmbeddingCompleted:
		return v.styles.Success.Render(text)
	case domain.EmbeddingFailed:
		return v.styles.Error.Render(text)
	case domain.EmbeddingProcessing, domain.EmbeddingPending:
		return v.styles.Warning.Render(text)
	default:
		return v.styles.Muted.Render(text)
	}
}

func statusText(doc *domain.Document) string {
	if doc.EmbeddingStatus == domain.EmbeddingProcessing {
		return fmt.Sprintf("%s %d%%", doc.EmbeddingStatus, doc.EmbeddingProgress)
	}
	return string(doc.EmbeddingStatus)
}

func (v *View) renderHelp() string {
	if v.uploading {
		return v.styles.Help.Render("[enter] upload  [esc] cancel")
	}
	return v.styles.Help.Render("[↑/↓] navigate  [enter] chat  [u] upload  [d] delete  [p] reprocess  [r] reload  [?] help  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// Uploading reports whether the upload path prompt is open.
func (v *View) Uploading() bool {
	return v.uploading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
