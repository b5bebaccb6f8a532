package post

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/matchmaker/gateway"
	"github.com/a-h/matchmaker/models"
	"github.com/a-h/matchmaker/reqlog"
	"github.com/a-h/respond"
)

type Responder interface {
	Respond(ctx context.Context, msgs []models.ChatMessage) (models.ChatPostResponse, error)
}

func New(log *slog.Logger, gw Responder) Handler {
	return Handler{
		log:     log,
		gateway: gw,
	}
}

type Handler struct {
	log     *slog.Logger
	gateway Responder
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := reqlog.Logger(r.Context(), h.log)

	var req models.ChatPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Error("failed to decode body", slog.Any("error", err))
		writeError(w, http.StatusBadRequest)
		return
	}

	log.Debug("generating content", slog.Int("messages", len(req.Messages)))
	resp, err := h.gateway.Respond(r.Context(), req.Messages)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gateway.ErrInvalidRole) {
			status = http.StatusBadRequest
		}
		log.Error("failed to get response from AI", slog.Any("error", err))
		writeError(w, status)
		return
	}
	if resp.GeneratesSummary {
		log.Info("completion is a profile summary")
	}

	respond.WithJSON(w, resp, http.StatusOK)
}

func writeError(w http.ResponseWriter, status int) {
	respond.WithJSON(w, models.ErrorResponse{Error: models.ErrorMessageChat}, status)
}
