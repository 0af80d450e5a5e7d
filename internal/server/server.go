// Package server exposes the HTTP and WebSocket surface of PitchPartner:
// session lifecycle endpoints, transcript and audio ingestion, live
// landmark streaming, and the Prometheus scrape endpoint.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pitchpartner/pitchpartner/internal/health"
	"github.com/pitchpartner/pitchpartner/internal/observe"
	"github.com/pitchpartner/pitchpartner/internal/persona"
	"github.com/pitchpartner/pitchpartner/internal/session"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// maxAudioBytes caps an uploaded utterance. A minute of 16-bit 48 kHz
// mono is under 6 MiB; anything larger is not a pitch answer.
const maxAudioBytes = 8 << 20

// Config holds the dependencies for a [Server].
type Config struct {
	Controller *session.Controller
	Metrics    *observe.Metrics
	Health     *health.Handler
	Log        *slog.Logger
}

// Server routes HTTP traffic to the session controller.
type Server struct {
	ctrl    *session.Controller
	metrics *observe.Metrics
	log     *slog.Logger
	router  *chi.Mux
}

// New creates a Server with all routes registered.
func New(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		ctrl:    cfg.Controller,
		metrics: cfg.Metrics,
		log:     log,
		router:  chi.NewRouter(),
	}

	s.router.Use(observe.Middleware(cfg.Metrics))

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleInfo)
			r.Post("/start", s.handleStart)
			r.Post("/end", s.handleEnd)
			r.Post("/reset", s.handleReset)
			r.Get("/metrics", s.handleSessionMetrics)
			r.Get("/messages", s.handleMessages)
			r.Get("/report", s.handleReport)
			r.Post("/transcript", s.handleTranscript)
			r.Post("/audio", s.handleAudio)
		})
		r.Get("/personas", s.handlePersonas)
		r.Get("/modes", s.handleModes)
	})

	s.router.Get("/ws/landmarks", s.handleLandmarks)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if cfg.Health != nil {
		cfg.Health.Register(s.router)
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type startRequest struct {
	Persona persona.ID     `json:"persona"`
	Mode    persona.ModeID `json:"mode"`
	Roast   bool           `json:"roast"`
}

type transcriptRequest struct {
	Text string `json:"text"`
}

type roundResponse struct {
	Transcript string                   `json:"transcript"`
	Analysis   types.TranscriptAnalysis `json:"analysis"`
	Reply      string                   `json:"reply"`
	Round      int                      `json:"round"`
	Done       bool                     `json:"done"`
	Report     string                   `json:"report,omitempty"`

	// Audio is the base64-encoded synthesized reply, present when TTS
	// succeeded.
	Audio     string `json:"audio,omitempty"`
	AudioMIME string `json:"audio_mime,omitempty"`
}

type reportResponse struct {
	Report string `json:"report"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.ctrl.StartSession(req.Persona, req.Mode, req.Roast); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionActive):
			s.writeError(w, http.StatusConflict, err.Error())
		default:
			s.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusCreated, s.ctrl.Info())
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	text, err := s.ctrl.End(r.Context())
	if err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, reportResponse{Report: text})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.Info())
}

func (s *Server) handleSessionMetrics(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.Metrics())
}

func (s *Server) handleMessages(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.Messages())
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	text, ok := s.ctrl.Report()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no completed session")
		return
	}
	s.writeJSON(w, http.StatusOK, reportResponse{Report: text})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.finishRound(w, r, func() (*session.RoundResult, error) {
		return s.ctrl.IngestTranscript(r.Context(), req.Text)
	})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "wav"
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read audio body")
		return
	}
	if len(audio) == 0 {
		s.writeError(w, http.StatusBadRequest, "empty audio body")
		return
	}
	if len(audio) > maxAudioBytes {
		s.writeError(w, http.StatusRequestEntityTooLarge, "audio exceeds upload limit")
		return
	}

	s.finishRound(w, r, func() (*session.RoundResult, error) {
		return s.ctrl.IngestAudio(r.Context(), audio, format)
	})
}

// finishRound runs one round ingestion and renders the shared response
// and error mapping for the transcript and audio endpoints.
func (s *Server) finishRound(w http.ResponseWriter, r *http.Request, run func() (*session.RoundResult, error)) {
	res, err := run()
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoActiveSession):
			s.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, session.ErrEmptyTranscript):
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, session.ErrTranscription):
			s.writeError(w, http.StatusUnprocessableEntity, "didn't catch that, please repeat")
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.metrics.RecordRound(r.Context(), string(s.ctrl.Info().Persona))

	resp := roundResponse{
		Transcript: res.Transcript,
		Analysis:   res.Analysis,
		Reply:      res.Reply,
		Round:      res.Round,
		Done:       res.Done,
		Report:     res.Report,
	}
	if res.Audio != nil {
		resp.Audio = base64.StdEncoding.EncodeToString(res.Audio.Data)
		resp.AudioMIME = res.Audio.MIMEType
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type personaInfo struct {
	ID          persona.ID `json:"id"`
	DisplayName string     `json:"display_name"`
	Opener      string     `json:"opener"`
	Color       string     `json:"color"`
}

func (s *Server) handlePersonas(w http.ResponseWriter, _ *http.Request) {
	ids := persona.All()
	out := make([]personaInfo, 0, len(ids))
	for _, id := range ids {
		p, _ := persona.Get(id)
		out = append(out, personaInfo{
			ID:          id,
			DisplayName: p.DisplayName,
			Opener:      p.Opener,
			Color:       p.Color,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type modeInfo struct {
	ID              persona.ModeID `json:"id"`
	DisplayName     string         `json:"display_name"`
	DurationSeconds int            `json:"duration_seconds"`
	RoundsTarget    int            `json:"rounds_target"`
	Description     string         `json:"description"`
}

func (s *Server) handleModes(w http.ResponseWriter, _ *http.Request) {
	ids := persona.AllModes()
	out := make([]modeInfo, 0, len(ids))
	for _, id := range ids {
		m, _ := persona.GetMode(id)
		out = append(out, modeInfo{
			ID:              id,
			DisplayName:     m.DisplayName,
			DurationSeconds: m.DurationSeconds,
			RoundsTarget:    m.RoundsTarget,
			Description:     m.Description,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
