// Package api serves stored simulation runs over HTTP and runs new ones on request.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	swiss "github.com/sazarkin/swiss-stage-sim"
	"github.com/sazarkin/swiss-stage-sim/internal/logger"
	"github.com/sazarkin/swiss-stage-sim/internal/store"
)

// RunRequest is the body of POST /runs.
type RunRequest struct {
	SeedOrder      []string `json:"seed_order"`
	QualWins       int      `json:"qual_wins"`
	ElimLosses     int      `json:"elim_losses"`
	Iterations     int      `json:"iterations"`
	RandomSeed     int64    `json:"random_seed"`
	InitialPairing string   `json:"initial_pairing"`
	MidPairing     string   `json:"mid_pairing"`
}

type Server struct {
	store         *store.Store
	workers       int
	maxIterations int
}

func NewServer(s *store.Store, workers, maxIterations int) *Server {
	if workers < 1 {
		workers = 1
	}
	return &Server{store: s, workers: workers, maxIterations: maxIterations}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/runs", s.listRuns).Methods(http.MethodGet)
	r.HandleFunc("/runs", s.createRun).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}", s.getRun).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}/matchup-counts", s.matchupCounts).Methods(http.MethodGet)
	return r
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	runs, err := s.store.List(limit)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) matchupCounts(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	var signatures []string
	if run.Results != nil {
		signatures = run.Results.ErrorDetails
	}
	writeJSON(w, http.StatusOK, swiss.MatchupCounts(signatures))
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Iterations < 1 {
		writeError(w, http.StatusBadRequest, "iterations must be positive")
		return
	}
	if s.maxIterations > 0 && req.Iterations > s.maxIterations {
		writeError(w, http.StatusBadRequest, "iterations exceed the server limit of "+strconv.Itoa(s.maxIterations))
		return
	}

	opts := []swiss.Option{swiss.WithWorkers(s.workers), swiss.WithSeed(req.RandomSeed)}
	if req.InitialPairing != "" || req.MidPairing != "" {
		initial, mid, err := pairings(req.InitialPairing, req.MidPairing)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts = append(opts, swiss.WithPairings(initial, mid))
	}

	settings := swiss.Settings{QualWins: req.QualWins, ElimLosses: req.ElimLosses}
	sim, err := swiss.NewSimulation(req.SeedOrder, settings, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run := store.NewRun(req.SeedOrder, settings, req.Iterations, s.workers, req.RandomSeed)
	start := time.Now()
	results, err := sim.Run(r.Context(), req.Iterations)
	if err != nil {
		s.internalError(w, err)
		return
	}
	run.Duration = time.Since(start)
	run.Results = results
	if err := s.store.Save(run); err != nil {
		s.internalError(w, err)
		return
	}
	logger.Info("Run stored", "id", run.ID, "iterations", run.Iterations, "failed", results.FailedSimulations)
	writeJSON(w, http.StatusCreated, run)
}

func pairings(initialName, midName string) (swiss.Pairing, swiss.Pairing, error) {
	var initial, mid swiss.Pairing
	var err error
	if initialName != "" {
		if initial, err = swiss.PairingByName(initialName); err != nil {
			return nil, nil, err
		}
	}
	if midName != "" {
		if mid, err = swiss.PairingByName(midName); err != nil {
			return nil, nil, err
		}
	}
	return initial, mid, nil
}

func (s *Server) lookup(w http.ResponseWriter, id string) (*store.Run, bool) {
	run, err := s.store.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run "+id+" not found")
		return nil, false
	}
	if err != nil {
		s.internalError(w, err)
		return nil, false
	}
	return run, true
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	logger.Error("Request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warning("Failed to write response", "error", err)
	}
}
