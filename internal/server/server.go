package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/staffing-forecast/internal/cache"
	"github.com/iwvelando/staffing-forecast/internal/config"
	"github.com/iwvelando/staffing-forecast/internal/referentiel"
	"github.com/iwvelando/staffing-forecast/internal/sizing"
	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"github.com/iwvelando/staffing-forecast/pkg/output"
	"github.com/iwvelando/staffing-forecast/pkg/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// defaultCenter is used when a request does not name a center.
const defaultCenter = "general"

// Options tunes the HTTP handler.
type Options struct {
	MaxUploadSize int64
	CacheTTL      time.Duration
	Version       string
}

type handler struct {
	logger        *zap.Logger
	store         *referentiel.Store
	results       cache.Repository
	flight        singleflight.Group
	cacheTTL      time.Duration
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the sizing API.
// store provides the référentiel used when a request carries no standards
// of its own; results may be nil to disable caching.
func NewHandler(logger *zap.Logger, store *referentiel.Store, results cache.Repository, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = referentiel.NewStaticStore(nil)
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		store:         store,
		results:       results,
		cacheTTL:      opts.CacheTTL,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()

	// Single-center simulation
	mux.HandleFunc("/api/simulate", h.handleSimulate)

	// Per-task CSV of a single-center simulation
	mux.HandleFunc("/api/export", h.handleExport)

	// Batch configuration upload, one run per active scenario
	mux.HandleFunc("/api/batch", h.handleBatch)

	// Rule-table presets
	mux.HandleFunc("/api/centers", h.handleCenters)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type simulateRequest struct {
	Name       string                 `json:"name,omitempty"`
	Center     string                 `json:"center"`
	Parameters sizing.Parameters      `json:"parameters"`
	Volumes    []sizing.VolumeInput   `json:"volumes"`
	Positions  []sizing.StaffPosition `json:"positions"`
	Standards  []referentiel.Record   `json:"standards,omitempty"`
}

type simulateResponse struct {
	RunID            string                  `json:"runId"`
	Name             string                  `json:"name,omitempty"`
	Center           string                  `json:"center"`
	Result           sizing.SimulationResult `json:"result"`
	CSV              string                  `json:"csv"`
	Warnings         []string                `json:"warnings,omitempty"`
	Duration         string                  `json:"duration"`
	Cached           bool                    `json:"cached"`
	StandardsVersion int                     `json:"standardsVersion"`
}

type batchResponse struct {
	RunID    string             `json:"runId"`
	Runs     []sizing.RunResult `json:"runs"`
	CSV      string             `json:"csv"`
	Warnings []string           `json:"warnings,omitempty"`
	Duration string             `json:"duration"`
}

type centerInfo struct {
	Name             string   `json:"name"`
	Units            []string `json:"units"`
	Flows            []string `json:"flows"`
	ApplyCirculation bool     `json:"applyCirculation"`
	ApplyGeo         bool     `json:"applyGeo"`
	ApplyShift       bool     `json:"applyShift"`
	SplitSegments    bool     `json:"splitSegments"`
}

// cachedSimulation is the cache payload of a simulation.
type cachedSimulation struct {
	Center   string                  `json:"center"`
	Result   sizing.SimulationResult `json:"result"`
	CSV      string                  `json:"csv"`
	Warnings []string                `json:"warnings,omitempty"`
}

// requestError carries the HTTP status of a rejected request.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	req, err := h.decodeSimulateRequest(w, r)
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	sim, cached, version, err := h.simulate(r.Context(), req)
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	elapsed := time.Since(start)
	response := simulateResponse{
		RunID:            uuid.NewString(),
		Name:             req.Name,
		Center:           sim.Center,
		Result:           sim.Result,
		CSV:              sim.CSV,
		Warnings:         sim.Warnings,
		Duration:         elapsed.String(),
		Cached:           cached,
		StandardsVersion: version,
	}

	h.logger.Info("simulation computed",
		zap.String("op", op),
		zap.String("runId", response.RunID),
		zap.String("center", response.Center),
		zap.Int("tasks", len(sim.Result.PerTask)),
		zap.Float64("fteRounded", sim.Result.FTERounded),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	req, err := h.decodeSimulateRequest(w, r)
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	sim, _, _, err := h.simulate(r.Context(), req)
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	filename := "staffing-" + sim.Center + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, sim.CSV); err != nil {
		h.logger.Error("failed to write CSV response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBatch"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	// Uploaded configurations never read files from the server.
	cfg.Common.StandardsFile = ""
	warnings := cfg.ValidateConfiguration()

	standards, err := cfg.ResolveStandards()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if len(standards) == 0 {
		standards = h.store.Snapshot()
	}

	runs, err := cfg.Runs(standards)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	results, err := sizing.SimulateAll(r.Context(), h.logger, runs)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, err.Error(), op)
		return
	}

	csvData, err := output.CsvString(results)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := batchResponse{
		RunID:    uuid.NewString(),
		Runs:     results,
		CSV:      csvData,
		Warnings: warnings,
		Duration: elapsed.String(),
	}

	h.logger.Info("batch computed",
		zap.String("op", op),
		zap.String("runId", response.RunID),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleCenters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	names := sizing.Presets()
	centers := make([]centerInfo, 0, len(names))
	for _, name := range names {
		rules, _ := sizing.Preset(name)
		info := centerInfo{
			Name:             name,
			ApplyCirculation: rules.ApplyCirculation,
			ApplyGeo:         rules.ApplyGeo,
			ApplyShift:       rules.ApplyShift,
			SplitSegments:    rules.SplitSegments,
		}
		for unit := range rules.Units {
			info.Units = append(info.Units, unit)
		}
		for flow := range rules.FlowKinds {
			info.Flows = append(info.Flows, string(flow))
		}
		sort.Strings(info.Units)
		sort.Strings(info.Flows)
		centers = append(centers, info)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"centers": centers,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":          h.version,
		"standardsVersion": h.store.Version(),
	})
}

func (h *handler) decodeSimulateRequest(w http.ResponseWriter, r *http.Request) (simulateRequest, error) {
	var req simulateRequest
	body := http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return req, &requestError{http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize)}
		}
		return req, &requestError{http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err)}
	}
	if strings.TrimSpace(req.Center) == "" {
		req.Center = defaultCenter
	}
	return req, nil
}

// simulate runs one request, serving it from the cache when possible. It
// returns the simulation, whether it came from the cache and the version
// of the référentiel used (0 for inline standards).
func (h *handler) simulate(ctx context.Context, req simulateRequest) (cachedSimulation, bool, int, error) {
	rules, ok := sizing.Preset(req.Center)
	if !ok {
		return cachedSimulation{}, false, 0, &requestError{http.StatusBadRequest,
			fmt.Sprintf("unknown center %q, expected one of %v", req.Center, sizing.Presets())}
	}

	var (
		standards []sizing.TaskStandard
		version   int
	)
	if len(req.Standards) > 0 {
		converted, err := referentiel.Convert(req.Standards)
		if err != nil {
			return cachedSimulation{}, false, 0, &requestError{http.StatusBadRequest, fmt.Sprintf("invalid standards: %v", err)}
		}
		standards = converted
	} else {
		version = h.store.Version()
		standards = h.store.Snapshot()
	}

	key := h.cacheKey(req, version)
	if sim, ok := h.lookup(ctx, key); ok {
		return sim, true, version, nil
	}
	if key == "" {
		sim, err := h.compute(ctx, key, req, rules, standards)
		return sim, false, version, err
	}

	// Identical requests in flight share one computation.
	shared, err, _ := h.flight.Do(key, func() (interface{}, error) {
		return h.compute(ctx, key, req, rules, standards)
	})
	if err != nil {
		return cachedSimulation{}, false, 0, err
	}
	return shared.(cachedSimulation), false, version, nil
}

// compute simulates a request and stores the result under key.
func (h *handler) compute(ctx context.Context, key string, req simulateRequest, rules sizing.Rules, standards []sizing.TaskStandard) (cachedSimulation, error) {
	engine := sizing.NewEngine(h.logger, rules)
	result := engine.Simulate(req.Volumes, req.Parameters, standards, req.Positions)

	runs := []sizing.RunResult{{Name: req.Name, Center: rules.Center, Result: result}}
	csvData, err := output.CsvString(runs)
	if err != nil {
		return cachedSimulation{}, &requestError{http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err)}
	}

	validator := validation.ConfigValidator{
		Standards: standards,
		Scenarios: []validation.ScenarioConfig{{
			Name:       req.Name,
			Active:     true,
			Center:     req.Center,
			Parameters: req.Parameters,
			Volumes:    req.Volumes,
			Positions:  req.Positions,
		}},
	}

	sim := cachedSimulation{
		Center:   rules.Center,
		Result:   result,
		CSV:      csvData,
		Warnings: validator.ValidateAll(),
	}
	h.save(ctx, key, sim)
	return sim, nil
}

func (h *handler) cacheKey(req simulateRequest, version int) string {
	if h.results == nil {
		return ""
	}
	payload, err := json.Marshal(struct {
		Request          simulateRequest `json:"request"`
		StandardsVersion int             `json:"standardsVersion"`
	}{req, version})
	if err != nil {
		return ""
	}
	return cache.Key(constants.CacheKeyPrefix, payload)
}

func (h *handler) lookup(ctx context.Context, key string) (cachedSimulation, bool) {
	var sim cachedSimulation
	if key == "" {
		return sim, false
	}
	data, ok, err := h.results.Get(ctx, key)
	if err != nil {
		h.logger.Warn("cache lookup failed",
			zap.String("op", "server.lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		return sim, false
	}
	if !ok {
		return sim, false
	}
	if err := json.Unmarshal(data, &sim); err != nil {
		h.logger.Warn("discarding unreadable cache entry",
			zap.String("op", "server.lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		return sim, false
	}
	return sim, true
}

func (h *handler) save(ctx context.Context, key string, sim cachedSimulation) {
	if key == "" {
		return
	}
	data, err := json.Marshal(sim)
	if err != nil {
		return
	}
	if err := h.results.Set(ctx, key, data, h.cacheTTL); err != nil {
		h.logger.Warn("cache store failed",
			zap.String("op", "server.save"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (h *handler) respondRequestError(w http.ResponseWriter, err error, op string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		h.respondErrorWithOp(w, reqErr.status, reqErr.msg, op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
