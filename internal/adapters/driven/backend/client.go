// Package backend provides the HTTP client adapter for the PDF-chat
// backend service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driven"
	"github.com/docpilot-labs/docpilot-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Backend = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 30 * time.Second

	// DefaultRequestRate is the proactive throttle; generous enough that
	// interactive use never waits, but polling cannot stampede the backend.
	DefaultRequestRate = 20
)

// Config holds configuration for the backend client.
type Config struct {
	// BaseURL is the backend API base URL (default: http://localhost:5000/api).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestRate is the proactive throttle in requests per second.
	RequestRate float64
}

// Client provides typed operations against the backend REST surface.
type Client struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient creates a new backend client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestRate == 0 {
		cfg.RequestRate = DefaultRequestRate
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestRate), 1),
	}
}

// validateID rejects missing or placeholder identifiers before any
// network traffic happens.
func validateID(kind, id string) error {
	if domain.IsPlaceholderID(id) {
		return fmt.Errorf("%w: %s %q", domain.ErrInvalidID, kind, id)
	}
	return nil
}

// do issues one request with throttling and boundary logging.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logger.Debug("API request: %s %s", method, path)
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Debug("API request failed: %s %s: %v", method, path, err)
		return nil, &Error{Op: method + " " + path, Network: true, Detail: err.Error()}
	}
	logger.Debug("API response: %d %s %s", resp.StatusCode, method, path)

	return resp, nil
}

// checkStatus consumes the body and returns a normalised error for
// non-2xx responses. On success the body is left for the caller.
func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return parseError(op, resp.StatusCode, body)
}

// getJSON issues a GET and decodes the response into v.
func (c *Client) getJSON(ctx context.Context, path, op string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, op); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// ListDocuments returns all uploaded documents.
func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := c.getJSON(ctx, "/pdf", "list documents", &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument uploads a PDF as a multipart form (field "pdf") and
// returns the created document. The body is streamed, not buffered.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader, size int64, onProgress driven.UploadProgress) (*domain.Document, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("pdf", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := io.Reader(&progressReader{r: r, total: size, onProgress: onProgress})
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	resp, err := c.do(ctx, http.MethodPost, "/pdf/upload", pr, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "upload document"); err != nil {
		return nil, err
	}

	var doc domain.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("upload document: decode response: %w", err)
	}
	return &doc, nil
}

// DownloadDocument streams the raw PDF bytes to w.
func (c *Client) DownloadDocument(ctx context.Context, id string, w io.Writer) error {
	if err := validateID("document id", id); err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodGet, "/pdf/"+url.PathEscape(id), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "download document"); err != nil {
		return err
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download document: %w", err)
	}
	return nil
}

// GetEmbeddingStatus returns the indexing state of one document.
func (c *Client) GetEmbeddingStatus(ctx context.Context, id string) (*domain.EmbeddingState, error) {
	if err := validateID("document id", id); err != nil {
		return nil, err
	}

	var state domain.EmbeddingState
	path := "/pdf/" + url.PathEscape(id) + "/embedding-status"
	if err := c.getJSON(ctx, path, "get embedding status", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// reprocessResponse is the reprocess acknowledgement shape.
type reprocessResponse struct {
	NeedsReupload bool `json:"needsReupload"`
}

// ReprocessEmbeddings asks the backend to re-run the embedding pipeline.
// A needsReupload signal, in either an acknowledgement or an error body,
// maps to domain.ErrNeedsReupload.
func (c *Client) ReprocessEmbeddings(ctx context.Context, id string) error {
	if err := validateID("document id", id); err != nil {
		return err
	}

	path := "/pdf/" + url.PathEscape(id) + "/reprocess-embeddings"
	resp, err := c.do(ctx, http.MethodPost, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var ack reprocessResponse
	_ = json.Unmarshal(body, &ack)
	if ack.NeedsReupload {
		return fmt.Errorf("reprocess embeddings: %w", domain.ErrNeedsReupload)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError("reprocess embeddings", resp.StatusCode, body)
	}
	return nil
}

// DeleteDocument removes a document. A 404 is reported as a normalised
// error satisfying errors.Is(err, domain.ErrNotFound); callers decide
// whether that counts as success.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	if err := validateID("document id", id); err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodDelete, "/pdf/"+url.PathEscape(id), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp, "delete document")
}

// sendMessageRequest is the chat send payload.
type sendMessageRequest struct {
	PDFID   string `json:"pdfId"`
	Message string `json:"message"`
}

// SendMessage asks a question and returns the confirmed pair.
func (c *Client) SendMessage(ctx context.Context, docID, text string) (*domain.ChatExchange, error) {
	if err := validateID("document id", docID); err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(sendMessageRequest{PDFID: docID, Message: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/chat/message", bytes.NewReader(jsonBody), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "send message"); err != nil {
		return nil, err
	}

	var exchange domain.ChatExchange
	if err := json.NewDecoder(resp.Body).Decode(&exchange); err != nil {
		return nil, fmt.Errorf("send message: decode response: %w", err)
	}
	return &exchange, nil
}

// conversationResponse is the history payload.
type conversationResponse struct {
	Messages []domain.Message `json:"messages"`
}

// GetConversation returns the stored message history for a document.
func (c *Client) GetConversation(ctx context.Context, docID string) ([]domain.Message, error) {
	if err := validateID("document id", docID); err != nil {
		return nil, err
	}

	var conv conversationResponse
	path := "/chat/conversation/" + url.PathEscape(docID)
	if err := c.getJSON(ctx, path, "get conversation", &conv); err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

// DeleteMessage removes one message from a conversation.
func (c *Client) DeleteMessage(ctx context.Context, docID, messageID string) error {
	if err := validateID("document id", docID); err != nil {
		return err
	}
	if err := validateID("message id", messageID); err != nil {
		return err
	}

	path := "/chat/conversation/" + url.PathEscape(docID) + "/message/" + url.PathEscape(messageID)
	resp, err := c.do(ctx, http.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp, "delete message")
}

// ClearConversation removes all messages for a document.
func (c *Client) ClearConversation(ctx context.Context, docID string) error {
	if err := validateID("document id", docID); err != nil {
		return err
	}

	path := "/chat/conversation/" + url.PathEscape(docID) + "/clear"
	resp, err := c.do(ctx, http.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp, "clear conversation")
}

// searchSimilarRequest is the similarity search payload.
type searchSimilarRequest struct {
	PDFID string `json:"pdfId"`
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// searchSimilarResponse is the similarity search result shape.
type searchSimilarResponse struct {
	Results []domain.SimilarSnippet `json:"results"`
}

// SearchSimilar returns ranked snippets similar to the query.
func (c *Client) SearchSimilar(ctx context.Context, docID, query string, limit int) ([]domain.SimilarSnippet, error) {
	if err := validateID("document id", docID); err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(searchSimilarRequest{PDFID: docID, Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/chat/search-similar", bytes.NewReader(jsonBody), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "search similar"); err != nil {
		return nil, err
	}

	var result searchSimilarResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("search similar: decode response: %w", err)
	}
	return result.Results, nil
}
