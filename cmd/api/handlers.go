package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/GearheadHQ/gearhead-mvp/engine/catalog"
	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
	"github.com/GearheadHQ/gearhead-mvp/engine/dyno"
	"github.com/GearheadHQ/gearhead-mvp/engine/gains"
	"github.com/GearheadHQ/gearhead-mvp/engine/physics"
	"github.com/GearheadHQ/gearhead-mvp/engine/scoring"
	"github.com/GearheadHQ/gearhead-mvp/pkg/metrics"
	"github.com/GearheadHQ/gearhead-mvp/pkg/modparse"
	"github.com/GearheadHQ/gearhead-mvp/pkg/repo"
	"github.com/GearheadHQ/gearhead-mvp/pkg/resilience"
	"github.com/GearheadHQ/gearhead-mvp/pkg/similar"
)

// baselineGetter fetches stored vehicle baselines by name.
type baselineGetter interface {
	Get(ctx context.Context, name string) (domain.VehicleBaseline, error)
}

// matcher finds vehicles with comparable performance envelopes.
type matcher interface {
	SimilarTo(ctx context.Context, b domain.VehicleBaseline, topK int) ([]similar.Match, error)
}

type serverDeps struct {
	agg      *gains.Aggregator
	cat      *catalog.Catalog
	parser   *modparse.Parser
	vehicles baselineGetter
	similar  matcher
	breaker  *resilience.Breaker
	reg      *metrics.Registry
	logger   *slog.Logger
}

type server struct {
	serverDeps
	requests  func(endpoint string) *metrics.Counter
	engineDur func(op string) *metrics.Histogram
}

func newServer(deps serverDeps) *server {
	s := &server{serverDeps: deps}
	s.requests = func(endpoint string) *metrics.Counter {
		return s.reg.Counter("gearhead_api_requests_total",
			"API requests by endpoint", "endpoint", endpoint)
	}
	s.engineDur = func(op string) *metrics.Histogram {
		return s.reg.Histogram("gearhead_engine_duration_seconds",
			"Engine computation latency", nil, "op", op)
	}
	return s
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("POST /api/aggregate", s.handleAggregate)
	mux.HandleFunc("POST /api/dyno", s.handleDyno)
	mux.HandleFunc("POST /api/estimate", s.handleEstimate)
	mux.HandleFunc("POST /api/rank", s.handleRank)
	mux.HandleFunc("POST /api/similar", s.handleSimilar)
	return mux
}

// --- Request/response shapes ---

// BuildRequest is the JSON body for the aggregate, dyno, and estimate
// endpoints. A baseline may be supplied inline or looked up by stored
// vehicle name; an inline baseline wins if both are set. Notes is free
// text whose recognised mod mentions are appended to the build.
type BuildRequest struct {
	Vehicle  string                    `json:"vehicle,omitempty"`
	Baseline *domain.VehicleBaseline   `json:"baseline,omitempty"`
	Build    domain.BuildConfiguration `json:"build"`
	Notes    string                    `json:"notes,omitempty"`
}

// AggregateResponse is the JSON response for POST /api/aggregate.
type AggregateResponse struct {
	CatalogVersion string           `json:"catalog_version"`
	Gains          gains.GainResult `json:"gains"`
}

// DynoResponse is the JSON response for POST /api/dyno.
type DynoResponse struct {
	CatalogVersion string           `json:"catalog_version"`
	Gains          gains.GainResult `json:"gains"`
	Curve          dyno.Curve       `json:"curve"`
}

// EstimateResponse is the JSON response for POST /api/estimate.
type EstimateResponse struct {
	CatalogVersion string                      `json:"catalog_version"`
	Gains          gains.GainResult            `json:"gains"`
	Estimate       physics.PerformanceEstimate `json:"estimate"`
}

// RankRequest is the JSON body for POST /api/rank.
type RankRequest struct {
	Vehicles []scoring.Vehicle `json:"vehicles"`
	Profile  scoring.Profile   `json:"profile"`
}

// SimilarRequest is the JSON body for POST /api/similar.
type SimilarRequest struct {
	Vehicle  string                  `json:"vehicle,omitempty"`
	Baseline *domain.VehicleBaseline `json:"baseline,omitempty"`
	TopK     int                     `json:"top_k,omitempty"`
}

// --- Handlers ---

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":          "ok",
		"catalog_version": s.cat.Version(),
	})
}

func (s *server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	s.requests("catalog").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"version": s.cat.Version(),
		"count":   s.cat.Len(),
		"mods":    s.cat.All(),
	})
}

func (s *server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	s.requests("aggregate").Inc()
	baseline, build, ok := s.decodeBuild(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := s.agg.Aggregate(baseline, build)
	s.engineDur("aggregate").Since(start)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AggregateResponse{
		CatalogVersion: s.agg.CatalogVersion(),
		Gains:          result,
	})
}

func (s *server) handleDyno(w http.ResponseWriter, r *http.Request) {
	s.requests("dyno").Inc()
	baseline, build, ok := s.decodeBuild(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := s.agg.Aggregate(baseline, build)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	curve, err := dyno.Synthesize(baseline, result)
	s.engineDur("dyno").Since(start)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, DynoResponse{
		CatalogVersion: s.agg.CatalogVersion(),
		Gains:          result,
		Curve:          curve,
	})
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	s.requests("estimate").Inc()
	baseline, build, ok := s.decodeBuild(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := s.agg.Aggregate(baseline, build)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	est, err := physics.Estimate(baseline, result, build)
	s.engineDur("estimate").Since(start)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, EstimateResponse{
		CatalogVersion: s.agg.CatalogVersion(),
		Gains:          result,
		Estimate:       est,
	})
}

func (s *server) handleRank(w http.ResponseWriter, r *http.Request) {
	s.requests("rank").Inc()
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	ranked, err := scoring.Rank(req.Vehicles, req.Profile)
	s.engineDur("rank").Since(start)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranked": ranked})
}

func (s *server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	s.requests("similar").Inc()
	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	baseline, ok := s.resolveBaseline(w, r.Context(), req.Vehicle, req.Baseline)
	if !ok {
		return
	}
	if err := domain.ValidateBaseline(baseline); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}
	matches, err := s.similar.SimilarTo(r.Context(), baseline, topK)
	if err != nil {
		s.logger.Error("similarity search failed", "err", err)
		writeErr(w, http.StatusInternalServerError, "similarity search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// --- Helpers ---

// decodeBuild decodes a BuildRequest, resolves its baseline, and merges
// mod keys recognised in the notes text. Writes the error response itself
// and reports ok=false on failure.
func (s *server) decodeBuild(w http.ResponseWriter, r *http.Request) (domain.VehicleBaseline, domain.BuildConfiguration, bool) {
	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return domain.VehicleBaseline{}, domain.BuildConfiguration{}, false
	}
	baseline, ok := s.resolveBaseline(w, r.Context(), req.Vehicle, req.Baseline)
	if !ok {
		return domain.VehicleBaseline{}, domain.BuildConfiguration{}, false
	}
	build := req.Build
	if req.Notes != "" {
		build.InstalledModKeys = append(build.InstalledModKeys, s.parser.Keys(req.Notes)...)
	}
	return baseline, build, true
}

// resolveBaseline picks the inline baseline if present, otherwise fetches
// the named vehicle through the circuit breaker.
func (s *server) resolveBaseline(w http.ResponseWriter, ctx context.Context, name string, inline *domain.VehicleBaseline) (domain.VehicleBaseline, bool) {
	if inline != nil {
		return *inline, true
	}
	if name == "" {
		writeErr(w, http.StatusBadRequest, "baseline or vehicle is required")
		return domain.VehicleBaseline{}, false
	}

	var baseline domain.VehicleBaseline
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		baseline, err = s.vehicles.Get(ctx, name)
		return err
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeErr(w, http.StatusNotFound, "unknown vehicle "+name)
		return domain.VehicleBaseline{}, false
	case errors.Is(err, resilience.ErrCircuitOpen):
		writeErr(w, http.StatusServiceUnavailable, "vehicle catalog unavailable")
		return domain.VehicleBaseline{}, false
	case err != nil:
		s.logger.Error("vehicle lookup failed", "vehicle", name, "err", err)
		writeErr(w, http.StatusInternalServerError, "vehicle lookup failed")
		return domain.VehicleBaseline{}, false
	}
	return baseline, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
