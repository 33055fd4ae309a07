package attachment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Rrens/chat-widget/internal/config"
	"github.com/Rrens/chat-widget/internal/domain"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file is too large")
	ErrNotFound        = errors.New("attachment not found")
)

// sniffLen is how much of an upload is inspected for content detection
const sniffLen = 3072

// Store keeps uploaded files on disk next to a JSON sidecar holding their
// metadata
type Store struct {
	dir     string
	maxSize int64
	allowed map[string]bool
	urlBase string
}

// NewStore creates the upload directory if needed
func NewStore(cfg config.UploadConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	return &Store{
		dir:     cfg.Dir,
		maxSize: cfg.MaxSize,
		allowed: allowed,
		urlBase: "/api/v1/attachments/",
	}, nil
}

// MaxSize returns the largest accepted upload in bytes
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Validate checks the name and declared size of an upload before it is read
func (s *Store) Validate(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if len(s.allowed) > 0 && !s.allowed[ext] {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedType, ext, s.allowedList())
	}
	if s.maxSize > 0 && size > s.maxSize {
		return fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, FormatSize(size), FormatSize(s.maxSize))
	}
	return nil
}

// Save validates and stores an upload. An empty mimeType is detected from the
// content.
func (s *Store) Save(ctx context.Context, name, mimeType string, r io.Reader) (*domain.FileAttachment, error) {
	name = filepath.Base(name)
	if err := s.Validate(name, 0); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(head).String()
	}

	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(name))
	dest := s.blobPath(id, ext)

	dst, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	src := io.MultiReader(bytes.NewReader(head), r)
	if s.maxSize > 0 {
		src = io.LimitReader(src, s.maxSize+1)
	}
	size, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if s.maxSize > 0 && size > s.maxSize {
		os.Remove(dest)
		return nil, fmt.Errorf("%w: more than %s", ErrTooLarge, FormatSize(s.maxSize))
	}

	att := &domain.FileAttachment{
		ID:        id,
		Name:      name,
		MimeType:  mimeType,
		SizeBytes: size,
		URL:       s.urlBase + id,
	}

	meta, err := json.Marshal(storedMeta{FileAttachment: *att, Ext: ext})
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(id), meta, 0o644); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	return att, nil
}

// Get returns the metadata of a stored attachment
func (s *Store) Get(ctx context.Context, id string) (*domain.FileAttachment, error) {
	meta, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	att := meta.FileAttachment
	return &att, nil
}

// Open streams the bytes of a stored attachment
func (s *Store) Open(ctx context.Context, att domain.FileAttachment) (io.ReadCloser, error) {
	meta, err := s.readMeta(att.ID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.blobPath(meta.ID, meta.Ext))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open attachment: %w", err)
	}
	return f, nil
}

// Remove deletes an attachment and its metadata
func (s *Store) Remove(ctx context.Context, id string) error {
	meta, err := s.readMeta(id)
	if err != nil {
		return err
	}
	if err := os.Remove(s.blobPath(meta.ID, meta.Ext)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove attachment: %w", err)
	}
	if err := os.Remove(s.metaPath(meta.ID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove metadata: %w", err)
	}
	return nil
}

type storedMeta struct {
	domain.FileAttachment
	Ext string `json:"ext"`
}

func (s *Store) readMeta(id string) (*storedMeta, error) {
	// ids are generated uuids; anything else cannot name a stored file
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta storedMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return &meta, nil
}

func (s *Store) blobPath(id, ext string) string {
	return filepath.Join(s.dir, id+ext)
}

func (s *Store) metaPath(id string) string {
	return filepath.Join(s.dir, id+".meta.json")
}

func (s *Store) allowedList() string {
	exts := make([]string, 0, len(s.allowed))
	for ext := range s.allowed {
		exts = append(exts, ext)
	}
	return strings.Join(exts, ", ")
}

// FormatSize renders a byte count as bytes, KB or MB with one decimal
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}
