package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrConversationNotFound is returned when an operation names a conversation
// that does not exist.
var ErrConversationNotFound = errors.New("conversation not found")

// MessageType represents the author of a message
type MessageType string

const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
)

// Valid reports whether t is one of the known message types
func (t MessageType) Valid() bool {
	return t == MessageTypeUser || t == MessageTypeAssistant
}

// FileAttachment describes a file referenced by a message. Only metadata is
// kept here; the bytes live in attachment storage.
type FileAttachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"type"`
	SizeBytes int64  `json:"size"`
	URL       string `json:"url"`
}

// Message represents a single chat message. Messages are immutable once
// appended to a conversation.
type Message struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Type       MessageType     `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	Attachment *FileAttachment `json:"attachment,omitempty"`
}

// Conversation represents a conversation thread.
// LastMessage and Timestamp mirror the most recently appended message.
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	LastMessage string    `json:"lastMessage"`
	Timestamp   time.Time `json:"timestamp"`
	Renamed     bool      `json:"renamed,omitempty"`
}

// Clone returns a deep copy that shares no slices or pointers with c
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		if m.Attachment != nil {
			att := *m.Attachment
			m.Attachment = &att
		}
		out.Messages[i] = m
	}
	return out
}

// UserMessageCount returns the number of user-authored messages
func (c Conversation) UserMessageCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.Type == MessageTypeUser {
			n++
		}
	}
	return n
}

// maxTitleLength is the rune budget of a truncated title
const maxTitleLength = 30

// ExtractTitle derives a conversation title from the first user message.
// It returns the shorter of the first sentence and the content truncated to
// 30 characters; ties go to the first sentence.
func ExtractTitle(content, placeholder string) string {
	if content == "" {
		return placeholder
	}

	firstSentence := content
	if i := strings.IndexAny(content, ".!?"); i >= 0 {
		firstSentence = content[:i]
	}
	firstSentence = strings.TrimSpace(firstSentence)

	shortTitle := content
	if utf8.RuneCountInString(content) > maxTitleLength {
		shortTitle = string([]rune(content)[:maxTitleLength]) + "..."
	}

	if utf8.RuneCountInString(firstSentence) <= utf8.RuneCountInString(shortTitle) {
		return firstSentence
	}
	return shortTitle
}

// LastMessagePreview returns the denormalized preview for a new message
func LastMessagePreview(content string, attachment *FileAttachment, locale Locale) string {
	if content != "" {
		return content
	}
	if attachment != nil {
		return locale.AttachmentPreview(attachment.Name)
	}
	return ""
}
