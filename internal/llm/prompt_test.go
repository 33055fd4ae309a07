package llm_test

import (
	"strings"
	"testing"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/llm"
)

func TestBuildPrompt(t *testing.T) {
	req := llm.Request{
		Message: "What is the weather like?",
		History: []llm.Turn{
			{Role: domain.MessageTypeAssistant, Content: "Hello! How can I help you today?"},
			{Role: domain.MessageTypeUser, Content: "Hi"},
		},
	}

	prompt := llm.BuildPrompt(req)

	mustContain := []string{
		llm.SystemPrompt,
		"Assistant: Hello! How can I help you today?",
		"User: Hi",
		"User: What is the weather like?",
	}

	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}

	if !strings.HasSuffix(prompt, "Assistant:") {
		t.Errorf("prompt should end with the assistant cue, got %q", prompt[len(prompt)-20:])
	}
}

func TestUserContent(t *testing.T) {
	tests := []struct {
		name     string
		req      llm.Request
		contains []string
	}{
		{
			"plain message",
			llm.Request{Message: "hello"},
			[]string{"hello"},
		},
		{
			"attachment only",
			llm.Request{Attachment: &domain.FileAttachment{Name: "cv.docx", MimeType: "application/msword", SizeBytes: 42}},
			[]string{"cv.docx", "42 bytes"},
		},
		{
			"message and attachment",
			llm.Request{Message: "see file", Attachment: &domain.FileAttachment{Name: "cv.docx"}},
			[]string{"see file", "cv.docx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := llm.UserContent(tt.req)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("UserContent() = %q, should contain %q", got, s)
				}
			}
		})
	}
}

func TestChatTurns(t *testing.T) {
	req := llm.Request{
		Message: "latest",
		History: []llm.Turn{{Role: domain.MessageTypeUser, Content: "first"}},
	}

	turns := llm.ChatTurns(req)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[1].Role != domain.MessageTypeUser || turns[1].Content != "latest" {
		t.Errorf("unexpected last turn: %+v", turns[1])
	}
	if len(req.History) != 1 {
		t.Error("ChatTurns must not modify the request history")
	}
}

func TestCleanReply(t *testing.T) {
	if got := llm.CleanReply("\n  answer \t\n"); got != "answer" {
		t.Errorf("CleanReply() = %q", got)
	}
}
