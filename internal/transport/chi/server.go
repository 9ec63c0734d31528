// Package chi exposes the HTTP surface of the quer API.
package chi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ecoquerai/quer/internal/domain"
	"github.com/ecoquerai/quer/internal/logger"
	answeruc "github.com/ecoquerai/quer/internal/usecase/answer"
	healthuc "github.com/ecoquerai/quer/internal/usecase/health"
)

// Client-facing error strings. Everything unexpected collapses into the
// generic message so no upstream detail leaks.
const (
	msgTooLong = "Message is too long"
	msgGeneric = "An error occurred"
)

// questionRequest is the POST /question body. Audio is base64-encoded PCM16
// little-endian, 16 kHz, mono, honored only when the audio feature is enabled.
type questionRequest struct {
	Question  string `json:"question"`
	Audio     string `json:"audio,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// questionResponse is the POST /question success body. Parks is present only
// when the echo_parks feature is enabled.
type questionResponse struct {
	Answer string        `json:"answer"`
	Parks  []domain.Park `json:"parks,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server holds the HTTP handlers.
type Server struct {
	answers      *answeruc.Service
	health       *healthuc.Service
	echoParks    bool
	audioEnabled bool
	logger       *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(answers *answeruc.Service, health *healthuc.Service, echoParks, audioEnabled bool, log *zap.Logger) *Server {
	return &Server{
		answers:      answers,
		health:       health,
		echoParks:    echoParks,
		audioEnabled: audioEnabled,
		logger:       log,
	}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/question", s.handleQuestion)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// handleQuestion handles POST /question.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgGeneric)
		return
	}

	ucReq := answeruc.Request{
		SessionID: req.SessionID,
		Question:  req.Question,
	}

	if req.Audio != "" && s.audioEnabled {
		audio, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgGeneric)
			return
		}
		ucReq.Audio = audio
	}

	if ucReq.Question == "" && len(ucReq.Audio) == 0 {
		writeError(w, http.StatusBadRequest, msgGeneric)
		return
	}

	result, err := s.answers.Answer(r.Context(), ucReq)
	if err != nil {
		s.handleAnswerError(r, w, err)
		return
	}

	resp := questionResponse{Answer: result.Text}
	if s.echoParks {
		resp.Parks = result.Parks
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAnswerError maps pipeline failures onto the two-shape error contract:
// budget rejection is a 400, anything else is a detail-free 500.
func (s *Server) handleAnswerError(r *http.Request, w http.ResponseWriter, err error) {
	log := logger.FromContext(r.Context())

	if errors.Is(err, domain.ErrContextTooLarge) {
		log.Warn("question rejected by token budget", zap.Error(err))
		writeError(w, http.StatusBadRequest, msgTooLong)
		return
	}

	log.Error("question pipeline failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgGeneric)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
