package put

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/matchmaker/auth"
	"github.com/a-h/matchmaker/db"
	"github.com/a-h/matchmaker/models"
	"github.com/a-h/matchmaker/reqlog"
	"github.com/a-h/respond"
)

type ProfilePutter interface {
	ProfilePut(ctx context.Context, p db.Profile) (stored db.Profile, err error)
}

func New(log *slog.Logger, profiles ProfilePutter) Handler {
	return Handler{
		log:      log,
		profiles: profiles,
		now:      time.Now,
	}
}

type Handler struct {
	log      *slog.Logger
	profiles ProfilePutter
	now      func() time.Time
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUser(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}
	log := reqlog.Logger(r.Context(), h.log)

	var req models.ProfilePutRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Summary) == "" {
		respond.WithError(w, "summary is required", http.StatusBadRequest)
		return
	}

	now := h.now().UTC()
	stored, err := h.profiles.ProfilePut(r.Context(), db.Profile{
		User:          user,
		Summary:       req.Summary,
		CreatedAt:     now,
		LastUpdatedAt: now,
	})
	if err != nil {
		log.Error("profile put failed", slog.Any("error", err))
		respond.WithError(w, "profile put failed", http.StatusInternalServerError)
		return
	}

	respond.WithJSON(w, models.Profile{
		User:          stored.User,
		Summary:       stored.Summary,
		CreatedAt:     stored.CreatedAt,
		LastUpdatedAt: stored.LastUpdatedAt,
	}, http.StatusOK)
}
