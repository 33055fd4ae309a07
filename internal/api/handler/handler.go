package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-widget/internal/api/response"
	"github.com/Rrens/chat-widget/internal/attachment"
	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/service"
)

var validate = validator.New()

// writeError maps service and store errors to HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, attachment.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrMessageTooLong),
		errors.Is(err, attachment.ErrUnsupportedType):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrAttachmentInUse):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, attachment.ErrTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		log.Error().Err(err).Msg("Request failed")
		response.InternalError(w, "internal server error")
	}
}
