package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/matchmaker/models"
	"github.com/google/go-cmp/cmp"
)

func TestClient(t *testing.T) {
	var profile *models.Profile
	var authorization string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(models.NewChatPostResponse("echo: "+req.Messages[len(req.Messages)-1].Content, false))
	})
	mux.HandleFunc("POST /api/generate-summary", func(w http.ResponseWriter, r *http.Request) {
		var req models.GenerateSummaryPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(models.GenerateSummaryPostResponse{Summary: req.ChatHistory[0].Content})
	})
	mux.HandleFunc("GET /api/profile", func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		if profile == nil {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(profile)
	})
	mux.HandleFunc("PUT /api/profile", func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		var req models.ProfilePutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		profile = &models.Profile{User: "alice", Summary: req.Summary}
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL, "test-key")

	t.Run("ChatPost", func(t *testing.T) {
		resp, err := c.ChatPost(ctx, models.ChatPostRequest{
			Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := models.ChatPostResponse{Role: models.RoleAssistant, Content: "echo: hello"}
		if diff := cmp.Diff(expected, resp); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("GenerateSummaryPost", func(t *testing.T) {
		resp, err := c.GenerateSummaryPost(ctx, models.GenerateSummaryPostRequest{
			ChatHistory: []models.ChatMessage{{Role: models.RoleUser, Content: "I climb."}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Summary != "I climb." {
			t.Errorf("unexpected summary %q", resp.Summary)
		}
	})
	t.Run("ProfileGet returns not ok when no profile is stored", func(t *testing.T) {
		_, ok, err := c.ProfileGet(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected no profile")
		}
		if authorization != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", authorization)
		}
	})
	t.Run("ProfilePut then ProfileGet", func(t *testing.T) {
		stored, err := c.ProfilePut(ctx, models.ProfilePutRequest{Summary: "Kind."})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, ok, err := c.ProfileGet(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("expected a profile")
		}
		if diff := cmp.Diff(stored, p); diff != "" {
			t.Error(diff)
		}
	})
}
