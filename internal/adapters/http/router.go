package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/civicboard/docqa/internal/config"
	"github.com/civicboard/docqa/internal/core/domain"
	"github.com/civicboard/docqa/internal/core/ports"
	"github.com/civicboard/docqa/internal/observability/metrics"
)

type Router struct {
	chat      ports.DocumentChatService
	registrar ports.AttachmentRegistrar
	metrics   *metrics.Metrics
	modelID   string
	cfg       config.Config
}

func NewRouter(chat ports.DocumentChatService, registrar ports.AttachmentRegistrar, m *metrics.Metrics, cfg config.Config) *Router {
	return &Router{
		chat:      chat,
		registrar: registrar,
		metrics:   m,
		modelID:   cfg.ChatModel,
		cfg:       cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/attachments", rt.registerAttachment)
	mux.HandleFunc("/v1/attachments/", rt.chatWithAttachment)

	handler := backpressureMiddleware(mux, rt.cfg.APIMaxInFlight, time.Second)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = metricsMiddleware(handler, rt.metrics)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Question string               `json:"question"`
	Messages []domain.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

func (rt *Router) chatWithAttachment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/attachments/")
	attachmentID, ok := strings.CutSuffix(rest, "/chat")
	if !ok || attachmentID == "" || strings.Contains(attachmentID, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.chat.Answer(r.Context(), attachmentID, req.Messages, req.Question)
	rt.metrics.RecordAnswer(time.Since(start), err)
	if err != nil {
		writeError(w, r, "chat_error", err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: answer, Model: rt.modelID})
}

type registerRequest struct {
	ID          string `json:"id"`
	MeetingID   string `json:"meeting_id"`
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type"`
	StoragePath string `json:"storage_path"`
}

func (rt *Router) registerAttachment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	att := &domain.Attachment{
		ID:          req.ID,
		MeetingID:   req.MeetingID,
		Filename:    req.Filename,
		MimeType:    req.MimeType,
		StoragePath: req.StoragePath,
	}
	if err := rt.registrar.Register(r.Context(), att); err != nil {
		writeError(w, r, "register_error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": att.ID})
}

// writeError logs the full error chain and answers with a fixed
// client-facing message; internal operation detail stays server-side.
func writeError(w http.ResponseWriter, r *http.Request, event string, err error) {
	status, message := mapError(err)
	logAttrs := []any{
		"request_id", requestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"status", status,
		"error", err,
	}
	if status >= 500 {
		slog.Error(event, logAttrs...)
	} else {
		slog.Warn(event, logAttrs...)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
