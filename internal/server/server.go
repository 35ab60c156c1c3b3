// Package server exposes the pipeline over HTTP so harvest, enrichment,
// and scoring can be triggered without shell access to the box.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/enrich"
	"github.com/leadwerk/leadgen-cli/internal/harvest"
	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/scorer"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

// Harvester runs one source's ingest for a profile.
type Harvester interface {
	Run(ctx context.Context, profileID int64, source harvest.Source) (*model.HarvestRun, error)
}

// Enricher runs the requested enrichment passes for a profile.
type Enricher interface {
	Run(ctx context.Context, profileID int64, pass enrich.Pass) (*enrich.Result, error)
}

// Scorer scores every company with active vacancies under a profile.
type Scorer interface {
	ScoreProfile(ctx context.Context, profileID int64) (*scorer.Summary, error)
}

// Server wires the pipeline stages behind an HTTP API.
type Server struct {
	store     store.Store
	sources   map[string]harvest.Source
	harvester Harvester
	enricher  Enricher
	scorer    Scorer
}

// New creates a Server. The sources map keys are the names accepted by
// the harvest trigger.
func New(s store.Store, sources map[string]harvest.Source, h Harvester, e Enricher, sc Scorer) *Server {
	return &Server{store: s, sources: sources, harvester: h, enricher: e, scorer: sc}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/profiles/{id}", func(r chi.Router) {
		r.Post("/harvest", s.handleHarvest)
		r.Post("/enrich", s.handleEnrich)
		r.Post("/score", s.handleScore)
		r.Get("/leads", s.handleLeads)
	})

	return r
}

func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileID(w, r)
	if !ok {
		return
	}

	var req struct {
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, ok := s.sources[req.Source]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown source")
		return
	}

	// Runs detached from the request so slow boards cannot time out the
	// caller. Outcome lands in the harvest_runs table.
	go func() {
		run, err := s.harvester.Run(context.Background(), profileID, source)
		if err != nil {
			zap.L().Error("triggered harvest failed",
				zap.Int64("profile_id", profileID),
				zap.String("source", req.Source),
				zap.Error(err))
			return
		}
		zap.L().Info("triggered harvest complete",
			zap.String("run_id", run.ID.String()),
			zap.Int("new", run.VacanciesNew))
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":     "accepted",
		"profile_id": profileID,
		"source":     req.Source,
	})
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileID(w, r)
	if !ok {
		return
	}

	req := struct {
		Pass string `json:"pass"`
	}{Pass: string(enrich.PassBoth)}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	pass, err := enrich.ParsePass(req.Pass)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	go func() {
		if _, err := s.enricher.Run(context.Background(), profileID, pass); err != nil {
			zap.L().Error("triggered enrichment failed",
				zap.Int64("profile_id", profileID),
				zap.String("pass", string(pass)),
				zap.Error(err))
			return
		}
		zap.L().Info("triggered enrichment complete",
			zap.Int64("profile_id", profileID),
			zap.String("pass", string(pass)))
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":     "accepted",
		"profile_id": profileID,
		"pass":       string(pass),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileID(w, r)
	if !ok {
		return
	}

	summary, err := s.scorer.ScoreProfile(r.Context(), profileID)
	if err != nil {
		zap.L().Error("triggered scoring failed",
			zap.Int64("profile_id", profileID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"scored":   summary.Scored,
		"hot":      summary.Hot,
		"warm":     summary.Warm,
		"monitor":  summary.Monitor,
		"excluded": summary.Excluded,
	})
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	leads, err := s.store.ListLeads(r.Context(), profileID, limit)
	if err != nil {
		zap.L().Error("lead listing failed",
			zap.Int64("profile_id", profileID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lead listing failed")
		return
	}

	out := make([]leadJSON, 0, len(leads))
	for _, lead := range leads {
		out = append(out, leadJSON{
			CompanyID:         lead.CompanyID,
			Company:           lead.CompanyName,
			Status:            string(lead.Status),
			CompositeScore:    lead.CompositeScore,
			FitScore:          lead.FitScore,
			TimingScore:       lead.TimingScore,
			VacancyCount:      lead.VacancyCount,
			OldestVacancyDays: lead.OldestVacancyDays,
			PlatformCount:     lead.PlatformCount,
			ScoredAt:          lead.ScoredAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type leadJSON struct {
	CompanyID         int64   `json:"company_id"`
	Company           string  `json:"company"`
	Status            string  `json:"status"`
	CompositeScore    float64 `json:"composite_score"`
	FitScore          float64 `json:"fit_score"`
	TimingScore       float64 `json:"timing_score"`
	VacancyCount      int     `json:"vacancy_count"`
	OldestVacancyDays int     `json:"oldest_vacancy_days"`
	PlatformCount     int     `json:"platform_count"`
	ScoredAt          string  `json:"scored_at"`
}

func profileID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid profile id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
