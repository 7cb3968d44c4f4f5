package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestHealthHandler_Health は常に200と{status, message}を返すことを検証する。
func TestHealthHandler_Health(t *testing.T) {
	h := NewHealthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/health/", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want %q", body["status"], "ok")
	}
	if body["message"] == nil {
		t.Error("expected message in response")
	}
}

// TestHealthHandler_UpdateStatusEcho はエコーエンドポイントの各応答を検証する。
func TestHealthHandler_UpdateStatusEcho(t *testing.T) {
	h := NewHealthHandler()

	t.Run("POST with status", func(t *testing.T) {
		req := jsonBody(t, http.MethodPost, "/update-status/", map[string]any{"status": "completed"})
		w := httptest.NewRecorder()

		h.UpdateStatusEcho(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
		body := decodeBody(t, w)
		if body["message"] != "Status updated successfully" {
			t.Errorf("message = %v, want %q", body["message"], "Status updated successfully")
		}
		if body["new_status"] != "completed" {
			t.Errorf("new_status = %v, want %q", body["new_status"], "completed")
		}
	})

	t.Run("POST without status", func(t *testing.T) {
		req := jsonBody(t, http.MethodPost, "/update-status/", map[string]any{})
		w := httptest.NewRecorder()

		h.UpdateStatusEcho(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		body := decodeBody(t, w)
		if body["error"] != "Status is required" {
			t.Errorf("error = %v, want %q", body["error"], "Status is required")
		}
	})

	t.Run("GET not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/update-status/", nil)
		w := httptest.NewRecorder()

		h.UpdateStatusEcho(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/update-status/", strings.NewReader("{not json"))
		w := httptest.NewRecorder()

		h.UpdateStatusEcho(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
