package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/export"
	"github.com/alexanderramin/prdchat/internal/intelligence"
	"github.com/alexanderramin/prdchat/internal/llm"
	"github.com/alexanderramin/prdchat/internal/logger"
)

type Handler struct {
	registry  *Registry
	intake    intelligence.IntakeService
	draft     intelligence.DraftService
	formatter *export.Factory
}

func NewHandler(
	registry *Registry,
	intake intelligence.IntakeService,
	draft intelligence.DraftService,
	formatter *export.Factory,
) *Handler {
	return &Handler{
		registry:  registry,
		intake:    intake,
		draft:     draft,
		formatter: formatter,
	}
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	s := h.registry.Create()
	ctxzap.Info(ctx, "session created", zap.String("session_id", s.ID))

	h.respondJSON(w, http.StatusCreated, toSessionDTO(s))
}

// GetSession handles GET /sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, s, ok := h.lookup(w, r, "GetSession")
	if !ok {
		return
	}
	ctxzap.Debug(ctx, "session fetched")
	h.respondJSON(w, http.StatusOK, toSessionDTO(s))
}

// DeleteSession handles DELETE /sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, s, ok := h.lookup(w, r, "DeleteSession")
	if !ok {
		return
	}
	h.registry.Delete(s.ID)
	ctxzap.Info(ctx, "session deleted")
	w.WriteHeader(http.StatusNoContent)
}

// SubmitIntake handles POST /sessions/{id}/intake
func (h *Handler) SubmitIntake(w http.ResponseWriter, r *http.Request) {
	ctx, s, ok := h.lookup(w, r, "SubmitIntake")
	if !ok {
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if !s.TryAcquire() {
		h.handleServiceError(ctx, w, ErrSessionBusy)
		return
	}
	defer s.Release()

	working := s.Intake()
	turn, err := h.intake.Submit(ctx, working, req.Message)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}
	if !turn.Skipped {
		s.commitIntake(working)
	}

	ctxzap.Info(ctx, "intake turn processed",
		zap.String("tier", string(turn.Tier)),
		zap.Bool("skipped", turn.Skipped),
		zap.Bool("active", working.Active),
	)

	h.respondJSON(w, http.StatusOK, IntakeTurnDTO{
		StructuredResponse: turn.Response,
		Tier:               turn.Tier,
		Skipped:            turn.Skipped,
		Active:             working.Active,
	})
}

// SubmitDraft handles POST /sessions/{id}/draft. Clients sending
// Accept: text/event-stream receive the reply as server-sent events.
func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	ctx, s, ok := h.lookup(w, r, "SubmitDraft")
	if !ok {
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if !s.TryAcquire() {
		h.handleServiceError(ctx, w, ErrSessionBusy)
		return
	}
	defer s.Release()

	working := s.Draft()
	if working == nil {
		started, err := h.draft.Start(s.Intake())
		if err != nil {
			h.handleServiceError(ctx, w, err)
			return
		}
		working = started
	}

	flusher, canFlush := w.(http.Flusher)
	if r.Header.Get("Accept") == "text/event-stream" && canFlush {
		h.streamDraft(ctx, w, flusher, s, working, req.Message)
		return
	}

	reply, err := h.draft.Send(ctx, working, req.Message, nil)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}
	s.commitDraft(working)

	h.respondJSON(w, http.StatusOK, DraftReplyDTO{Reply: reply.Text, Skipped: reply.Skipped})
}

func (h *Handler) streamDraft(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, s *Session, working *domain.DraftSession, message string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	writeEvent := func(event string, data any) {
		payload, _ := json.Marshal(data)
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
		flusher.Flush()
	}

	reply, err := h.draft.Send(ctx, working, message, func(delta string) {
		writeEvent("delta", map[string]string{"text": delta})
	})
	if err != nil {
		ctxzap.Error(ctx, "draft stream failed", zap.Error(err))
		writeEvent("error", ErrorResponse{Error: "draft failed", Message: err.Error()})
		return
	}
	s.commitDraft(working)
	writeEvent("done", DraftReplyDTO{Reply: reply.Text, Skipped: reply.Skipped})
}

// GetDraft handles GET /sessions/{id}/draft
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, s, ok := h.lookup(w, r, "GetDraft")
	if !ok {
		return
	}
	d := s.Draft()
	if d == nil {
		h.handleServiceError(ctx, w, intelligence.ErrIntakeIncomplete)
		return
	}
	h.respondJSON(w, http.StatusOK, toDraftDTO(d))
}

// ExportDraft handles GET /sessions/{id}/export?format=md|pdf
func (h *Handler) ExportDraft(w http.ResponseWriter, r *http.Request) {
	ctx, s, ok := h.lookup(w, r, "ExportDraft")
	if !ok {
		return
	}

	formatter, err := h.formatter.Create(export.Format(r.URL.Query().Get("format")))
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	doc, err := export.FromDraft(s.Draft(), time.Now())
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	data, err := formatter.Format(doc)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", formatter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="prd%s"`, formatter.FileExtension()))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, action string) (context.Context, *Session, bool) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", action),
	)

	s, err := h.registry.Get(sessionID)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return ctx, nil, false
	}
	return ctx, s, true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	h.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	case errors.Is(err, ErrSessionBusy):
		h.respondError(ctx, w, http.StatusConflict, "a request for this session is already in progress", err)
	case errors.Is(err, intelligence.ErrIntakeIncomplete):
		h.respondError(ctx, w, http.StatusConflict, intelligence.IncompleteWarning, err)
	case errors.Is(err, intelligence.ErrIntakeComplete):
		h.respondError(ctx, w, http.StatusConflict, "information gathering is already complete", err)
	case errors.Is(err, export.ErrNothingToExport):
		h.respondError(ctx, w, http.StatusConflict, "no draft to export yet", err)
	case errors.Is(err, export.ErrUnsupportedFormat):
		h.respondError(ctx, w, http.StatusBadRequest, "unsupported export format", err)
	case errors.Is(err, llm.ErrMissingCredential):
		h.respondError(ctx, w, http.StatusServiceUnavailable, "model API key not configured", err)
	case errors.Is(err, llm.ErrTimeout):
		h.respondError(ctx, w, http.StatusGatewayTimeout, "model call timed out", err)
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrRemoteCall):
		h.respondError(ctx, w, http.StatusBadGateway, "model call failed", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
