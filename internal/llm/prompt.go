package llm

import (
	"fmt"
	"strings"

	"github.com/Rrens/chat-widget/internal/domain"
)

// SystemPrompt is sent to chat-completion providers ahead of the conversation
const SystemPrompt = "You are a helpful assistant embedded in a chat widget. Answer concisely and in the language of the user."

// UserContent renders the user message, mentioning the attached file by name
// since chat-completion providers never receive the bytes.
func UserContent(req Request) string {
	if req.Attachment == nil {
		return req.Message
	}
	note := fmt.Sprintf("[The user attached a file: %s (%s, %d bytes)]", req.Attachment.Name, req.Attachment.MimeType, req.Attachment.SizeBytes)
	if req.Message == "" {
		return note
	}
	return req.Message + "\n\n" + note
}

// BuildPrompt flattens the history and the new message into a single prompt
// for completion-style endpoints
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\n")
	for _, turn := range req.History {
		b.WriteString(speaker(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(UserContent(req))
	b.WriteString("\nAssistant:")
	return b.String()
}

// CleanReply trims the whitespace models tend to wrap answers in
func CleanReply(content string) string {
	return strings.TrimSpace(content)
}

func speaker(role domain.MessageType) string {
	if role == domain.MessageTypeAssistant {
		return "Assistant"
	}
	return "User"
}

// ChatTurns returns the history followed by the new user turn, ready for
// chat-completion endpoints
func ChatTurns(req Request) []Turn {
	turns := make([]Turn, 0, len(req.History)+1)
	turns = append(turns, req.History...)
	return append(turns, Turn{Role: domain.MessageTypeUser, Content: UserContent(req)})
}
