package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/matchmaker/auth"
	"github.com/a-h/matchmaker/db"
	"github.com/a-h/matchmaker/models"
	"github.com/a-h/matchmaker/reqlog"
	"github.com/a-h/respond"
)

type ProfileGetter interface {
	ProfileGet(ctx context.Context, user string) (p db.Profile, ok bool, err error)
}

func New(log *slog.Logger, profiles ProfileGetter) Handler {
	return Handler{
		log:      log,
		profiles: profiles,
	}
}

type Handler struct {
	log      *slog.Logger
	profiles ProfileGetter
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUser(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}
	log := reqlog.Logger(r.Context(), h.log)

	p, ok, err := h.profiles.ProfileGet(r.Context(), user)
	if err != nil {
		log.Error("failed to get profile", slog.Any("error", err))
		respond.WithError(w, "failed to get profile", http.StatusInternalServerError)
		return
	}
	if !ok {
		respond.WithError(w, "profile not found", http.StatusNotFound)
		return
	}

	respond.WithJSON(w, models.Profile{
		User:          p.User,
		Summary:       p.Summary,
		CreatedAt:     p.CreatedAt,
		LastUpdatedAt: p.LastUpdatedAt,
	}, http.StatusOK)
}
