package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
)

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single uploaded document.
type DocumentOutput struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PageCount       int    `json:"page_count"`
	EmbeddingStatus string `json:"embedding_status"`
	Ready           bool   `json:"ready"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	DocumentID string `json:"document_id" jsonschema:"the id of the uploaded document to ask about"`
	Question   string `json:"question" jsonschema:"the question to ask about the document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
	Pages  []int  `json:"pages,omitempty"`
}

// FindPassagesInput is the input schema for the find_passages tool.
type FindPassagesInput struct {
	DocumentID string `json:"document_id" jsonschema:"the id of the uploaded document to search in"`
	Query      string `json:"query" jsonschema:"text to find similar passages for"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// FindPassagesOutput is the output schema for the find_passages tool.
type FindPassagesOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput represents a single similar passage.
type PassageOutput struct {
	Content string  `json:"content"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List uploaded PDF documents and their processing status",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about an uploaded PDF document",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_passages",
		Description: "Find passages in a document similar to a query",
	}, s.handleFindPassages)
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if err := s.ports.Library.Refresh(ctx, true); err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	docs := s.ports.Library.Documents()
	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}

	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:              docs[i].ID,
			Name:            docs[i].OriginalName,
			PageCount:       docs[i].PageCount,
			EmbeddingStatus: string(docs[i].EmbeddingStatus),
			Ready:           docs[i].EmbeddingStatus == domain.EmbeddingCompleted,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	conv := s.ports.NewConversation(input.DocumentID)
	if err := conv.Send(ctx, input.Question); err != nil {
		return nil, AskOutput{}, err
	}

	msgs := conv.Messages()
	output := AskOutput{}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == domain.RoleAssistant {
			output.Answer = msgs[i].Content
			for _, c := range msgs[i].Citations {
				output.Pages = append(output.Pages, c.Page)
			}
			break
		}
	}

	return nil, output, nil
}

// handleFindPassages handles the find_passages tool invocation.
func (s *Server) handleFindPassages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindPassagesInput,
) (*mcp.CallToolResult, FindPassagesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	conv := s.ports.NewConversation(input.DocumentID)
	snippets := conv.SearchSimilar(ctx, input.Query, limit)

	output := FindPassagesOutput{
		Passages: make([]PassageOutput, len(snippets)),
		Count:    len(snippets),
	}
	for i := range snippets {
		output.Passages[i] = PassageOutput{
			Content: snippets[i].Content,
			Page:    snippets[i].Page,
			Score:   snippets[i].Score,
		}
	}

	return nil, output, nil
}
