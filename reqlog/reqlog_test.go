package reqlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name        string
		requestID   string
		keepID      bool
		handlerCode int
	}{
		{
			name:        "a new ID is assigned when none is sent",
			handlerCode: http.StatusOK,
		},
		{
			name:        "a valid incoming ID is kept",
			requestID:   "6f1d2b8e-4f43-4a43-8d0a-3c8e7b0b2f11",
			keepID:      true,
			handlerCode: http.StatusTeapot,
		},
		{
			name:        "an invalid incoming ID is replaced",
			requestID:   "not-a-uuid",
			handlerCode: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			log := slog.New(slog.NewJSONHandler(buf, nil))

			var fromContext *slog.Logger
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromContext = Logger(r.Context(), nil)
				w.WriteHeader(tt.handlerCode)
			})

			r := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			if tt.requestID != "" {
				r.Header.Set(HeaderName, tt.requestID)
			}
			w := httptest.NewRecorder()
			New(log, next).ServeHTTP(w, r)

			id := w.Header().Get(HeaderName)
			if _, err := uuid.Parse(id); err != nil {
				t.Errorf("expected a UUID request ID, got %q", id)
			}
			if tt.keepID && id != tt.requestID {
				t.Errorf("expected request ID %q, got %q", tt.requestID, id)
			}
			if fromContext == nil {
				t.Fatal("expected a logger in the request context")
			}

			var entry struct {
				RequestID string `json:"requestID"`
				Path      string `json:"path"`
				Status    int    `json:"status"`
			}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to decode log entry %q: %v", buf.String(), err)
			}
			if entry.RequestID != id {
				t.Errorf("expected logged request ID %q, got %q", id, entry.RequestID)
			}
			if entry.Path != "/api/chat" {
				t.Errorf("expected logged path /api/chat, got %q", entry.Path)
			}
			if entry.Status != tt.handlerCode {
				t.Errorf("expected logged status %d, got %d", tt.handlerCode, entry.Status)
			}
		})
	}
}

func TestLoggerFallback(t *testing.T) {
	fallback := slog.Default()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if Logger(r.Context(), fallback) != fallback {
		t.Error("expected the fallback logger")
	}
}
