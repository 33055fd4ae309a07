package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	placeholder := domain.English.DefaultTitle

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"empty content", "", placeholder},
		{"first sentence shorter", "Hello world. More text", "Hello world"},
		{"no terminator long", strings.Repeat("a", 50), strings.Repeat("a", 30) + "..."},
		{"short content unchanged", "Hi there", "Hi there"},
		{"question mark", "How are you? I am fine", "How are you"},
		{"exclamation", "Wow! That is a long sentence indeed", "Wow"},
		{"sentence longer than truncation", "This sentence is definitely longer than thirty characters. Yes", "This sentence is definitely lo..."},
		{"exactly thirty", strings.Repeat("b", 30), strings.Repeat("b", 30)},
		{"trims first sentence", "   padded sentence  . tail", "padded sentence"},
		{"unicode counted by rune", strings.Repeat("é", 40), strings.Repeat("é", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.ExtractTitle(tt.content, placeholder))
		})
	}
}

func TestExtractTitle_TieFavorsFirstSentence(t *testing.T) {
	// both candidates are "Hello" with no terminator and short content
	assert.Equal(t, "Hello", domain.ExtractTitle("Hello", "x"))
}

func TestLastMessagePreview(t *testing.T) {
	att := &domain.FileAttachment{Name: "report.docx"}

	assert.Equal(t, "hi", domain.LastMessagePreview("hi", att, domain.English))
	assert.Equal(t, "File: report.docx", domain.LastMessagePreview("", att, domain.English))
	assert.Equal(t, "Fichier: report.docx", domain.LastMessagePreview("", att, domain.French))
	assert.Equal(t, "", domain.LastMessagePreview("", nil, domain.English))
}

func TestConversation_Clone(t *testing.T) {
	orig := domain.Conversation{
		ID: "c1",
		Messages: []domain.Message{
			{ID: "m1", Content: "x", Type: domain.MessageTypeUser, Timestamp: time.Now(), Attachment: &domain.FileAttachment{Name: "a.docx"}},
		},
	}

	cp := orig.Clone()
	cp.Messages[0].Content = "changed"
	cp.Messages[0].Attachment.Name = "b.docx"
	cp.Messages = append(cp.Messages, domain.Message{ID: "m2"})

	assert.Equal(t, "x", orig.Messages[0].Content)
	assert.Equal(t, "a.docx", orig.Messages[0].Attachment.Name)
	assert.Len(t, orig.Messages, 1)
}

func TestConversation_UserMessageCount(t *testing.T) {
	c := domain.Conversation{Messages: []domain.Message{
		{Type: domain.MessageTypeAssistant},
		{Type: domain.MessageTypeUser},
		{Type: domain.MessageTypeAssistant},
	}}
	assert.Equal(t, 1, c.UserMessageCount())
}

func TestLocaleFor(t *testing.T) {
	assert.Equal(t, domain.English.DefaultTitle, domain.LocaleFor("").DefaultTitle)
	assert.Equal(t, domain.French.DefaultTitle, domain.LocaleFor("fr").DefaultTitle)
	assert.Equal(t, domain.French.DefaultTitle, domain.LocaleFor("fr-CA").DefaultTitle)
	assert.Equal(t, domain.English.DefaultTitle, domain.LocaleFor("en-GB").DefaultTitle)
	assert.Equal(t, domain.English.DefaultTitle, domain.LocaleFor("not a tag!!").DefaultTitle)
}

func TestLocale_EchoFor(t *testing.T) {
	assert.Equal(t, `Automatic reply to: "ping"`, domain.English.EchoFor("ping", nil))
	assert.Equal(t, `I received your file: "a.docx"`, domain.English.EchoFor("", &domain.FileAttachment{Name: "a.docx"}))
}
