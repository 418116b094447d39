// Package api serves a MoneyHero engine over HTTP.
//
// The routes mirror the engine operations: the player sheet, the battle log
// (transactions), the achievements and a websocket feed of engine events.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/etnz/moneyhero"
	"github.com/etnz/moneyhero/date"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

// Server is the MoneyHero HTTP API server.
type Server struct {
	engine  *moneyhero.Engine
	logger  *log.Logger
	metrics http.Handler
	events  *feed
	today   func() date.Date
}

// NewServer creates a server for e. Engine events are forwarded to the
// websocket clients until Close is called.
func NewServer(e *moneyhero.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		engine: e,
		logger: logger,
		today:  date.Today,
	}
	s.events = newFeed(logger)
	s.events.cancel = e.Subscribe(s.events.broadcast)
	return s
}

// EnableMetrics serves h on /metrics.
func (s *Server) EnableMetrics(h http.Handler) { s.metrics = h }

// Close stops the event feed and disconnects its clients.
func (s *Server) Close() { s.events.close() }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/player", s.handlePlayer)
		r.Put("/player/name", s.handleSetName)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleAddTransaction)
		r.Get("/transactions/{id}", s.handleGetTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)

		r.Get("/achievements", s.handleAchievements)
		r.Get("/achievements/{id}", s.handleGetAchievement)
		r.Post("/achievements/check", s.handleCheckAchievements)

		// Long lived, kept out of any timeout middleware.
		r.Get("/events", s.events.ServeHTTP)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if moneyhero.Sanitize(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.engine.SetPlayerName(req.Name)
	writeJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State().TransactionHistory)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tx, ok := s.engine.Transaction(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no transaction "+id)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// transactionRequest is the body of POST /api/transactions.
type transactionRequest struct {
	Type        moneyhero.TxType `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Date        string           `json:"date"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	tx := moneyhero.Transaction{
		Type:        moneyhero.TxType(strings.ToLower(string(req.Type))),
		Amount:      req.Amount,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != "" {
		day, err := date.Parse(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
			return
		}
		tx.Date = day
	}
	tx, err := tx.Validate(s.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recorded, err := s.engine.AddTransaction(tx)
	switch {
	case errors.Is(err, moneyhero.ErrInvalidTransaction):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Printf("[api] add transaction: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, recorded)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.engine.Transaction(id); !ok {
		writeError(w, http.StatusNotFound, "no transaction "+id)
		return
	}
	if err := s.engine.DeleteTransaction(id); err != nil {
		s.logger.Printf("[api] delete transaction %q: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Achievements())
}

func (s *Server) handleGetAchievement(w http.ResponseWriter, r *http.Request) {
	a, err := s.engine.Achievement(chi.URLParam(r, "id"))
	if errors.Is(err, moneyhero.ErrUnknownAchievement) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked := s.engine.CheckAchievements()
	if unlocked == nil {
		unlocked = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"unlocked": unlocked})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"status":  status,
		},
	})
}

const writeWait = 5 * time.Second
