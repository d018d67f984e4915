package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
)

type decodeTarget struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     bool
		wantField   string
		wantMessage string
	}{
		{name: "valid object", body: `{"title":"Buy milk","priority":"high"}`},
		{name: "empty body", body: "", wantErr: true, wantMessage: "Invalid request body: body is empty"},
		{name: "malformed JSON", body: `{"title":`, wantErr: true, wantMessage: "Invalid request body: malformed JSON"},
		{name: "syntax error", body: `{title}`, wantErr: true, wantMessage: "Invalid request body: malformed JSON"},
		{name: "wrong type", body: `{"count":"three"}`, wantErr: true, wantField: "count"},
		{name: "unknown field", body: `{"title":"a","owner":"x"}`, wantErr: true, wantField: "owner"},
		{name: "trailing object", body: `{"title":"a"}{"title":"b"}`, wantErr: true, wantMessage: "Invalid request body: body must contain a single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst decodeTarget
			apiErr := decodeJSON(w, req, &dst)

			if !tt.wantErr {
				if apiErr != nil {
					t.Fatalf("unexpected error: %v", apiErr)
				}
				if dst.Title != "Buy milk" || dst.Priority != "high" {
					t.Errorf("decoded = %+v", dst)
				}
				return
			}

			if apiErr == nil {
				t.Fatal("expected error, got nil")
			}
			if apiErr.Code != model.ErrCodeInvalidRequest {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidRequest)
			}
			if tt.wantMessage != "" && apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
			if tt.wantField != "" {
				if len(apiErr.FieldErrors) != 1 || apiErr.FieldErrors[0].Field != tt.wantField {
					t.Errorf("FieldErrors = %+v, want field %q", apiErr.FieldErrors, tt.wantField)
				}
			}
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	body := `{"title":"` + strings.Repeat("a", maxRequestBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(body))
	w := httptest.NewRecorder()

	var dst decodeTarget
	apiErr := decodeJSON(w, req, &dst)
	if apiErr == nil {
		t.Fatal("expected error for oversized body")
	}
	if apiErr.Message != "Invalid request body: body is too large" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestHandleServiceError(t *testing.T) {
	t.Run("APIError keeps its status", func(t *testing.T) {
		w := httptest.NewRecorder()
		handleServiceError(w, model.NewTaskNotFoundError())

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
		if body := decodeErrorBody(t, w); body.Code != model.ErrCodeTaskNotFound {
			t.Errorf("code = %q", body.Code)
		}
	})

	t.Run("other errors become internal errors without details", func(t *testing.T) {
		w := httptest.NewRecorder()
		handleServiceError(w, errors.New("pq: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
		if strings.Contains(w.Body.String(), "connection refused") {
			t.Errorf("internal details leaked: %s", w.Body.String())
		}
	})
}

func TestRequireUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()

	if _, ok := requireUserID(w, req); ok {
		t.Fatal("expected false without user in context")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	userID, ok := requireUserID(w, withUserID(req, "user-1"))
	if !ok || userID != "user-1" {
		t.Errorf("requireUserID = (%q, %v), want (user-1, true)", userID, ok)
	}
}
