package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"KWatch/internal/model"
	"KWatch/internal/scheduler"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server exposes the watchlist readings over HTTP.
type Server struct {
	sched *scheduler.Scheduler
	log   *zap.Logger
}

// NewRouter builds the HTTP routes, including /metrics.
func NewRouter(sched *scheduler.Scheduler, log *zap.Logger) *mux.Router {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{sched: sched, log: log}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/readings", s.handleReadings).Methods(http.MethodGet)
	router.HandleFunc("/api/readings/{symbol}", s.handleReading).Methods(http.MethodGet)
	router.HandleFunc("/api/refresh", s.handleRefresh).Methods(http.MethodPost)
	router.HandleFunc("/api/history/{symbol}", s.handleHistory).Methods(http.MethodGet)
	router.Handle("/metrics", sched.Metrics.Handler()).Methods(http.MethodGet)
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sched.Readings(r.Context()))
}

func (s *Server) handleReading(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	item, ok := s.sched.Watchlist.Get(symbol)
	if !ok {
		s.writeError(w, http.StatusNotFound, "symbol not on watchlist")
		return
	}
	s.writeJSON(w, http.StatusOK, s.sched.Collector.Read(r.Context(), item))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sched.Refresh(r.Context(), scheduler.TriggerAPI))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	hist, err := s.sched.Recorder.History(symbol, limit)
	if err != nil {
		s.log.Error("load history", zap.String("symbol", symbol), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if hist == nil {
		hist = []model.Reading{}
	}
	s.writeJSON(w, http.StatusOK, hist)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
