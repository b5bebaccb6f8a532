package post

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/matchmaker/models"
	"github.com/a-h/matchmaker/reqlog"
	"github.com/a-h/matchmaker/summarizer"
	"github.com/a-h/respond"
)

func New(log *slog.Logger, s summarizer.Summarizer) Handler {
	return Handler{
		log:        log,
		summarizer: s,
	}
}

type Handler struct {
	log        *slog.Logger
	summarizer summarizer.Summarizer
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := reqlog.Logger(r.Context(), h.log)

	var req models.GenerateSummaryPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Error("failed to decode body", slog.Any("error", err))
		writeError(w, http.StatusBadRequest)
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), req.ChatHistory)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, summarizer.ErrEmptyHistory) {
			status = http.StatusBadRequest
		}
		log.Error("failed to generate summary", slog.Any("error", err))
		writeError(w, status)
		return
	}

	respond.WithJSON(w, models.GenerateSummaryPostResponse{Summary: summary}, http.StatusOK)
}

func writeError(w http.ResponseWriter, status int) {
	respond.WithJSON(w, models.ErrorResponse{Error: models.ErrorMessageSummary}, status)
}
