package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/exitexam/internal/exam"
	"github.com/pavelanni/exitexam/internal/i18n"
	"github.com/pavelanni/exitexam/internal/model"
	"github.com/pavelanni/exitexam/internal/store"
)

const (
	maxBodyBytes     = 1 << 20
	defaultListLimit = 20
	maxListLimit     = 200
)

// ExamService is the part of exam.Service the HTTP layer uses.
type ExamService interface {
	StartAttempt(ctx context.Context, cfg model.ExamConfig) (*model.AttemptPayload, error)
	SubmitAttempt(ctx context.Context, cfg model.ExamConfig, questionIDs []string, answers []model.SubmittedAnswer) (*model.Result, error)
	Result(ctx context.Context, id string) (*model.Result, error)
	Results(ctx context.Context, limit int) ([]model.Result, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	exams   ExamService
	config  model.ExamConfig
	pingers []Pinger
}

// New creates a new Handler. Every pinger is checked by /healthz.
func New(exams ExamService, cfg model.ExamConfig, pingers ...Pinger) *Handler {
	return &Handler{exams: exams, config: cfg, pingers: pingers}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/exit-exam/start", h.handleStart)
		r.Post("/exit-exam/submit", h.handleSubmit)
		r.Get("/results", h.handleListResults)
		r.Get("/results/{resultID}", h.handleGetResult)
	})
}

type submitRequest struct {
	QuestionIDs []string          `json:"questionIds"`
	Answers     []json.RawMessage `json:"answers"`
}

// submittedAnswers converts raw answer entries. Entries without a string
// questionId are dropped; a non-string selectedAnswer counts as unanswered.
func submittedAnswers(raw []json.RawMessage) []model.SubmittedAnswer {
	answers := make([]model.SubmittedAnswer, 0, len(raw))
	for _, r := range raw {
		var entry struct {
			QuestionID     any `json:"questionId"`
			SelectedAnswer any `json:"selectedAnswer"`
		}
		if err := json.Unmarshal(r, &entry); err != nil {
			continue
		}
		id, ok := entry.QuestionID.(string)
		if !ok {
			continue
		}
		selected, _ := entry.SelectedAnswer.(string)
		answers = append(answers, model.SubmittedAnswer{QuestionID: id, SelectedAnswer: selected})
	}
	return answers
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	payload, err := h.exams.StartAttempt(r.Context(), h.config)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, payload)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		slog.Debug("bad submit body", "error", err)
		writeMessage(w, http.StatusBadRequest, i18n.T(r.Context(), "InvalidRequestBody"))
		return
	}

	res, err := h.exams.SubmitAttempt(r.Context(), h.config, req.QuestionIDs, submittedAnswers(req.Answers))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, res)
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, i18n.T(r.Context(), "InvalidLimit"))
			return
		}
		limit = min(n, maxListLimit)
	}

	results, err := h.exams.Results(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []model.Result{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Success: true, Count: len(results), Data: results})
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.exams.Result(r.Context(), chi.URLParam(r, "resultID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	for _, p := range h.pingers {
		if err := p.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			writeMessage(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps engine and store errors to a status code and a localized
// message. Unexpected errors are logged and hidden from the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if exam.IsClientError(err) {
		writeMessage(w, http.StatusBadRequest, localizeExamError(ctx, err))
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, i18n.T(ctx, "ResultNotFound"))
		return
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeMessage(w, http.StatusInternalServerError, i18n.T(ctx, "InternalError"))
}

var configMessageIDs = map[exam.ConfigReason]string{
	exam.ReasonNoSubjects:          "ConfigNoSubjects",
	exam.ReasonDuplicateSubject:    "ConfigDuplicateSubject",
	exam.ReasonBaseTooSmall:        "ConfigBaseTooSmall",
	exam.ReasonExtraNegative:       "ConfigExtraNegative",
	exam.ReasonExtraMismatch:       "ConfigExtraMismatch",
	exam.ReasonExtraExceedsSubject: "ConfigExtraExceedsSubjects",
}

func localizeExamError(ctx context.Context, err error) string {
	var (
		cfgErr    *exam.ConfigError
		poolErr   *exam.InsufficientPoolError
		uniqueErr *exam.InsufficientUniqueQuestionsError
		idErr     *exam.InvalidIDError
		nfErr     *exam.NotFoundError
	)
	switch {
	case errors.As(err, &cfgErr):
		id, ok := configMessageIDs[cfgErr.Reason]
		if !ok {
			return err.Error()
		}
		return i18n.Td(ctx, id, map[string]any{"Subject": cfgErr.Subject})
	case errors.As(err, &poolErr):
		return i18n.Td(ctx, "InsufficientPool", map[string]any{
			"Subject": poolErr.Subject, "Needed": poolErr.Needed, "Found": poolErr.Found,
		})
	case errors.As(err, &uniqueErr):
		return i18n.Td(ctx, "InsufficientUnique", map[string]any{"Subject": uniqueErr.Subject})
	case errors.Is(err, exam.ErrNoQuestionIDs):
		return i18n.T(ctx, "NoQuestionIDs")
	case errors.As(err, &idErr):
		return i18n.Td(ctx, "InvalidQuestionID", map[string]any{"ID": idErr.ID})
	case errors.As(err, &nfErr):
		return i18n.Tp(ctx, "QuestionsNotFound", nfErr.Requested-nfErr.Found)
	}
	return err.Error()
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type listEnvelope struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
