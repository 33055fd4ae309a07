package handler

import (
	"net/http"
	"strings"

	"github.com/Rrens/chat-widget/internal/api/response"
	"github.com/Rrens/chat-widget/internal/domain"
)

// BackendHandler is a minimal assistant backend speaking the widget's
// multipart protocol. It echoes what it received.
type BackendHandler struct {
	locale    domain.Locale
	maxUpload int64
}

// NewBackendHandler creates a new reference backend handler
func NewBackendHandler(locale domain.Locale, maxUpload int64) *BackendHandler {
	return &BackendHandler{locale: locale, maxUpload: maxUpload}
}

type chatRequest struct {
	Message string `validate:"required,max=500"`
	CID     string `validate:"max=200"`
}

// Chat answers POST /chat with a reply field
func (h *BackendHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			response.BadRequest(w, "invalid form")
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	input := chatRequest{
		Message: r.FormValue("message"),
		CID:     r.FormValue("cid"),
	}
	if strings.TrimSpace(input.Message) == "" {
		response.Error(w, http.StatusUnprocessableEntity, "message is required and must not be blank")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	cid := input.CID
	if cid == "" {
		cid = "no cid provided"
	}

	body := map[string]any{
		"message": input.Message,
		"cid":     cid,
	}

	reply := h.locale.EchoFor(input.Message, nil)
	if file, header, err := r.FormFile("file"); err == nil {
		file.Close()
		body["file_name"] = header.Filename
		body["content_type"] = header.Header.Get("Content-Type")
		reply = h.locale.EchoFor(input.Message, &domain.FileAttachment{Name: header.Filename})
	}
	body["reply"] = reply

	// the widget reads top-level fields, not the envelope
	response.Raw(w, http.StatusOK, body)
}
