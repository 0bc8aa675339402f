package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bublenz/feedpulse/internal/chat"
	"github.com/bublenz/feedpulse/internal/config"
	"github.com/bublenz/feedpulse/internal/ingest"
	"github.com/bublenz/feedpulse/internal/models"
	"github.com/bublenz/feedpulse/internal/tagging"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server wires the HTTP surface: the push ingest endpoint, window and
// health probes, a manual tagging trigger, and the chat companion proxy.
type Server struct {
	config *config.Config
	ingest *ingest.Service
	tagger *tagging.Service
	chat   *chat.Service // may be nil when no API key is configured
}

// New creates a new server. chatService may be nil.
func New(cfg *config.Config, ingestService *ingest.Service, tagger *tagging.Service, chatService *chat.Service) *Server {
	return &Server{
		config: cfg,
		ingest: ingestService,
		tagger: tagger,
		chat:   chatService,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	router.HandleFunc("/ingest", s.handleIngest).Methods("POST")
	router.HandleFunc("/window", s.handleWindow).Methods("GET")
	router.HandleFunc("/trigger", s.handleTrigger).Methods("POST")
	router.HandleFunc("/chat", s.handleChat).Methods("POST")

	return router
}

// HTTPServer wraps the router with the usual timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.Port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"window_count": s.ingest.WindowSize(),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.ingest.GetMetrics()))
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingest.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"ok":    false,
			"error": "invalid JSON body",
		})
		return
	}

	post, err := s.ingest.Normalize(req, time.Now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	if err := s.ingest.IngestPost(post); err != nil {
		logrus.Errorf("Failed to ingest pushed post: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": "failed to store post",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"stored": post,
	})
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	snapshot := s.ingest.WindowSnapshot(time.Now())
	if snapshot == nil {
		snapshot = []models.Post{}
	}
	writeJSONValue(w, http.StatusOK, snapshot)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	go func() {
		if _, err := s.tagger.Run(time.Now()); err != nil {
			logrus.Errorf("Manual tagging trigger failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tagging run triggered",
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil || !s.chat.IsEnabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"ok":    false,
			"error": "chat companion is not configured",
		})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"ok":    false,
			"error": "message is required",
		})
		return
	}

	reply, err := s.chat.Send(r.Context(), req.Message)
	if err != nil {
		logrus.Errorf("Chat proxy failed: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"ok":    false,
			"error": "chat upstream failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"reply": reply,
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	writeJSONValue(w, status, body)
}

func writeJSONValue(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}
