package handler

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-widget/internal/api/response"
	"github.com/Rrens/chat-widget/internal/service"
)

// ConversationHandler handles conversation endpoints
type ConversationHandler struct {
	chatService *service.ChatService
	attachments service.AttachmentStore
	maxUpload   int64
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(chatService *service.ChatService, attachments service.AttachmentStore, maxUpload int64) *ConversationHandler {
	return &ConversationHandler{chatService: chatService, attachments: attachments, maxUpload: maxUpload}
}

// List handles listing conversations, newest first
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.chatService.List(r.Context()))
}

// Create handles conversation creation
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	response.Created(w, h.chatService.CreateConversation(r.Context()))
}

// Get handles getting a conversation by ID
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.chatService.Get(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, conv)
}

type renameRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// Rename handles renaming a conversation
func (h *ConversationHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var input renameRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	conv, err := h.chatService.RenameConversation(r.Context(), chi.URLParam(r, "conversationID"), input.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, conv)
}

// Delete handles deleting a conversation
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.DeleteConversation(r.Context(), chi.URLParam(r, "conversationID")); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

// GetActive returns the selected conversation
func (h *ConversationHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	conv, err := h.chatService.Active(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, conv)
}

type setActiveRequest struct {
	ID string `json:"id" validate:"required"`
}

// SetActive selects a conversation
func (h *ConversationHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var input setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	conv, err := h.chatService.SetActive(r.Context(), input.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, conv)
}

// SendMessage posts a user message. The body is JSON, or a multipart form
// with a content field and an optional file.
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var input service.SendMessageInput
	uploaded := false
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			response.BadRequest(w, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		input.Content = r.FormValue("content")

		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			if h.attachments == nil {
				response.BadRequest(w, "attachments are not enabled")
				return
			}
			att, err := h.attachments.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
			if err != nil {
				writeError(w, err)
				return
			}
			input.AttachmentID = att.ID
			uploaded = true
		} else if err != http.ErrMissingFile {
			response.BadRequest(w, "invalid file upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
	}

	msg, err := h.chatService.SendMessage(r.Context(), conversationID, input)
	if err != nil {
		if uploaded {
			if rmErr := h.attachments.Remove(r.Context(), input.AttachmentID); rmErr != nil {
				log.Warn().Err(rmErr).Str("attachment_id", input.AttachmentID).Msg("Failed to discard unsent attachment")
			}
		}
		writeError(w, err)
		return
	}
	response.Created(w, msg)
}

// Export downloads the conversation as a text file
func (h *ConversationHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename, text, err := h.chatService.Export(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", fmt.Sprint(len(text)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}
