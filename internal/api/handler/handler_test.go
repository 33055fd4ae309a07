package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-widget/internal/api/handler"
	"github.com/Rrens/chat-widget/internal/domain"
)

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	response := decode(t, rec)
	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

func TestReadyCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.ReadyCheck(pinger{})(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ReadyCheck(pinger{err: errors.New("down")})(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func multipartRequest(t *testing.T, fields map[string]string, fileName, fileContent string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		part.Write([]byte(fileContent))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBackendHandler_Chat(t *testing.T) {
	h := handler.NewBackendHandler(domain.English, 1<<20)

	t.Run("message only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Chat(rec, multipartRequest(t, map[string]string{"message": "hello"}, "", ""))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, `Automatic reply to: "hello"`, body["reply"])
		assert.Equal(t, "hello", body["message"])
		assert.Equal(t, "no cid provided", body["cid"])
		assert.NotContains(t, body, "file_name")
	})

	t.Run("with file and cid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Chat(rec, multipartRequest(t, map[string]string{"message": "see file", "cid": "c-42"}, "cv.docx", "bytes"))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "cv.docx", body["file_name"])
		assert.Equal(t, "c-42", body["cid"])
		assert.Equal(t, `I received your file: "cv.docx"`, body["reply"])
	})

	t.Run("blank message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Chat(rec, multipartRequest(t, map[string]string{"message": "   "}, "", ""))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("message too long", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Chat(rec, multipartRequest(t, map[string]string{"message": strings.Repeat("a", 501)}, "", ""))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("url encoded form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("message=hi"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.Chat(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hi", decode(t, rec)["message"])
	})
}
