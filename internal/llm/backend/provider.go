package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Rrens/chat-widget/internal/config"
	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/llm"
	"github.com/rs/zerolog/log"
)

// Request body formats understood by assistant backends
const (
	FormatMultipart = "multipart"
	FormatJSON      = "json"
)

// AttachmentOpener streams the bytes behind an attachment reference
type AttachmentOpener interface {
	Open(ctx context.Context, attachment domain.FileAttachment) (io.ReadCloser, error)
}

// Provider implements llm.Provider by posting the user message to an external
// assistant backend
type Provider struct {
	url     string
	format  string
	locale  domain.Locale
	opener  AttachmentOpener
	client  *http.Client
	maxBody int64
}

// NewProvider creates a new backend provider. opener may be nil, in which
// case files are never uploaded.
func NewProvider(cfg config.BackendConfig, locale domain.Locale, opener AttachmentOpener) llm.Provider {
	format := cfg.Format
	if format == "" {
		format = FormatMultipart
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Provider{
		url:     cfg.URL,
		format:  format,
		locale:  locale,
		opener:  opener,
		client:  &http.Client{Timeout: timeout},
		maxBody: 1 << 20,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "backend"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{"remote"}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return "remote"
}

// IsConfigured checks that a backend URL is set
func (p *Provider) IsConfigured() bool {
	return p.url != ""
}

// replyEnvelope accepts both field names seen from backends; reply wins
type replyEnvelope struct {
	Reply    *string `json:"reply"`
	Response *string `json:"response"`
}

// Reply submits the message and returns the backend's answer
func (p *Provider) Reply(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	var (
		body        io.Reader
		contentType string
		err         error
	)
	switch p.format {
	case FormatJSON:
		body, contentType, err = p.jsonBody(req)
	default:
		body, contentType, err = p.multipartBody(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var envelope replyEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var reply string
	switch {
	case envelope.Reply != nil:
		reply = *envelope.Reply
	case envelope.Response != nil:
		reply = *envelope.Response
	default:
		return nil, fmt.Errorf("backend response has neither reply nor response field")
	}

	reply = llm.CleanReply(reply)
	if reply == "" {
		reply = p.locale.EmptyReply
	}

	return &llm.Response{
		Reply:     reply,
		Model:     p.DefaultModel(),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *Provider) multipartBody(ctx context.Context, req llm.Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("message", req.Message); err != nil {
		return nil, "", fmt.Errorf("failed to write message field: %w", err)
	}
	if req.ConversationID != "" {
		if err := mw.WriteField("cid", req.ConversationID); err != nil {
			return nil, "", fmt.Errorf("failed to write cid field: %w", err)
		}
	}

	if req.Attachment != nil && p.opener != nil {
		if err := p.writeFile(ctx, mw, *req.Attachment); err != nil {
			// the message still goes out without the file
			log.Warn().Err(err).Str("attachment", req.Attachment.Name).Msg("failed to attach file to backend request")
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func (p *Provider) writeFile(ctx context.Context, mw *multipart.Writer, att domain.FileAttachment) error {
	rc, err := p.opener.Open(ctx, att)
	if err != nil {
		return err
	}
	defer rc.Close()

	part, err := mw.CreateFormFile("file", att.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, rc)
	return err
}

func (p *Provider) jsonBody(req llm.Request) (io.Reader, string, error) {
	payload := map[string]any{
		"message": req.Message,
	}
	if req.ConversationID != "" {
		payload["cid"] = req.ConversationID
	}
	if req.Attachment != nil {
		payload["file"] = req.Attachment
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
