package delete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/matchmaker/auth"
	"github.com/a-h/matchmaker/reqlog"
	"github.com/a-h/respond"
)

type ProfileDeleter interface {
	ProfileDelete(ctx context.Context, user string) error
}

func New(log *slog.Logger, profiles ProfileDeleter) Handler {
	return Handler{
		log:      log,
		profiles: profiles,
	}
}

type Handler struct {
	log      *slog.Logger
	profiles ProfileDeleter
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUser(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}
	if err := h.profiles.ProfileDelete(r.Context(), user); err != nil {
		reqlog.Logger(r.Context(), h.log).Error("profile delete failed", slog.Any("error", err))
		respond.WithError(w, "profile delete failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
