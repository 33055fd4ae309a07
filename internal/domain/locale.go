package domain

import (
	"fmt"

	"golang.org/x/text/language"
)

// Locale holds the user-visible fixed strings of the widget
type Locale struct {
	Tag               language.Tag
	DefaultTitle      string
	StartingChat      string
	Greeting          string
	EchoReply         string // %s is the user's message
	EchoFileReply     string // %s is the file name
	AttachmentLabel   string // %s is the file name
	ReplyFailed       string
	EmptyReply        string
	UserSpeaker       string
	AssistantSpeaker  string
	AttachedFileLabel string // %s is the file name, %s the formatted size
}

var (
	English = Locale{
		Tag:               language.English,
		DefaultTitle:      "New conversation",
		StartingChat:      "Starting chat...",
		Greeting:          "Hello! How can I help you today?",
		EchoReply:         "Automatic reply to: \"%s\"",
		EchoFileReply:     "I received your file: \"%s\"",
		AttachmentLabel:   "File: %s",
		ReplyFailed:       "Sorry, the assistant could not be reached. Please try again.",
		EmptyReply:        "Empty reply from the assistant",
		UserSpeaker:       "You",
		AssistantSpeaker:  "Assistant",
		AttachedFileLabel: "[Attached file: %s - %s]",
	}

	French = Locale{
		Tag:               language.French,
		DefaultTitle:      "Chat avec l'assistant",
		StartingChat:      "Démarrage du chat...",
		Greeting:          "Bonjour ! Comment puis-je vous aider aujourd'hui ?",
		EchoReply:         "Réponse automatique à: \"%s\"",
		EchoFileReply:     "J'ai bien reçu votre fichier: \"%s\"",
		AttachmentLabel:   "Fichier: %s",
		ReplyFailed:       "Désolé, l'assistant est injoignable. Veuillez réessayer.",
		EmptyReply:        "Réponse vide de l'API",
		UserSpeaker:       "Vous",
		AssistantSpeaker:  "Assistant",
		AttachedFileLabel: "[Fichier joint: %s - %s]",
	}
)

var (
	locales = []Locale{English, French}
	matcher = language.NewMatcher([]language.Tag{English.Tag, French.Tag})
)

// LocaleFor returns the built-in locale closest to the given BCP 47 tag.
// Unknown or malformed tags fall back to English.
func LocaleFor(tag string) Locale {
	if tag == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(tag)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return English
	}
	return locales[idx]
}

// AttachmentPreview is the conversation preview of a message that only
// carries a file
func (l Locale) AttachmentPreview(name string) string {
	return fmt.Sprintf(l.AttachmentLabel, name)
}

// EchoFor renders the canned assistant reply for a user message
func (l Locale) EchoFor(content string, attachment *FileAttachment) string {
	if attachment != nil {
		return fmt.Sprintf(l.EchoFileReply, attachment.Name)
	}
	return fmt.Sprintf(l.EchoReply, content)
}
