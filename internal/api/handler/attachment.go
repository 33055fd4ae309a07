package handler

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/chat-widget/internal/api/response"
	"github.com/Rrens/chat-widget/internal/attachment"
	"github.com/Rrens/chat-widget/internal/service"
)

// AttachmentHandler handles file upload endpoints
type AttachmentHandler struct {
	store       *attachment.Store
	chatService *service.ChatService
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(store *attachment.Store, chatService *service.ChatService) *AttachmentHandler {
	return &AttachmentHandler{store: store, chatService: chatService}
}

// Upload stores a file that a later message can reference by id
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxSize()+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		response.Error(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	if err := h.store.Validate(header.Filename, header.Size); err != nil {
		writeError(w, err)
		return
	}

	att, err := h.store.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, map[string]any{
		"attachment":     att,
		"formatted_size": attachment.FormatSize(att.SizeBytes),
	})
}

// Download streams a stored file
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	att, err := h.store.Get(r.Context(), chi.URLParam(r, "attachmentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	rc, err := h.store.Open(r.Context(), *att)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	contentType := att.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.Name}))
	w.Header().Set("Content-Length", strconv.FormatInt(att.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

// Delete discards an uploaded file that has not been sent yet
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.RemoveAttachment(r.Context(), chi.URLParam(r, "attachmentID")); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}
