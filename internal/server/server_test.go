package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/staffing-forecast/internal/cache"
	"github.com/iwvelando/staffing-forecast/internal/referentiel"
	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"go.uber.org/zap"
)

var referentielPath = filepath.Join("..", "..", "test", "test_referentiel.yaml")

const baselineRequest = `{
  "name": "baseline",
  "center": "cndp",
  "parameters": {"unitsPerContainer": 25, "containersPerSecondaryContainer": 40, "productivityPct": 100},
  "volumes": [
    {"flow": "Amana", "direction": "Import", "amount": 528000},
    {"flow": "CO", "direction": "Export", "amount": 1056000},
    {"flow": "CR", "direction": "Import", "amount": 264000}
  ],
  "positions": [
    {"id": "MOD-01", "category": "MOD", "currentHeadcount": 10},
    {"id": "MOI-01", "category": "MOI", "currentHeadcount": 3},
    {"id": "APS-01", "category": "APS", "currentHeadcount": 2}
  ]
}`

func newTestHandler(t *testing.T, results cache.Repository, maxUploadSize int64) http.Handler {
	t.Helper()

	store, err := referentiel.NewStore(zap.NewNop(), referentielPath)
	if err != nil {
		t.Fatalf("failed to load test référentiel: %v", err)
	}
	return NewHandler(zap.NewNop(), store, results, Options{
		MaxUploadSize: maxUploadSize,
		CacheTTL:      time.Minute,
	})
}

func TestHandleSimulateSuccess(t *testing.T) {
	handler := newTestHandler(t, cache.NewMemoryCache(), constants.DefaultMaxUploadSizeBytes)

	rr := performJSON(t, handler, "/api/simulate", baselineRequest)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp simulateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if _, err := uuid.Parse(resp.RunID); err != nil {
		t.Fatalf("expected a UUID run id, got %q", resp.RunID)
	}
	if resp.Center != "cndp" || resp.Name != "baseline" {
		t.Fatalf("unexpected run identity %q/%q", resp.Name, resp.Center)
	}
	if resp.Cached {
		t.Fatal("first request should not be served from the cache")
	}
	if resp.StandardsVersion != 1 {
		t.Fatalf("expected standards version 1, got %d", resp.StandardsVersion)
	}
	if len(resp.Result.PerTask) != 6 {
		t.Fatalf("expected 6 task rows, got %d", len(resp.Result.PerTask))
	}
	if resp.Result.FTERounded != 4 {
		t.Fatalf("expected 4 FTE, got %v", resp.Result.FTERounded)
	}
	if resp.Result.Final.MOD != 4 || resp.Result.Final.MOI != 3 || resp.Result.Final.APS != 0 {
		t.Fatalf("unexpected final headcount %+v", resp.Result.Final)
	}
	if resp.Result.Gap.MOD != -6 || resp.Result.Gap.APS != -2 {
		t.Fatalf("unexpected gap %+v", resp.Result.Gap)
	}
	if !strings.HasPrefix(resp.CSV, "scenario,center,task,") {
		t.Fatalf("expected CSV data in response, got %q", resp.CSV)
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
}

func TestHandleSimulateCached(t *testing.T) {
	results := cache.NewMemoryCache()
	handler := newTestHandler(t, results, constants.DefaultMaxUploadSizeBytes)

	first := decodeSimulate(t, performJSON(t, handler, "/api/simulate", baselineRequest))
	second := decodeSimulate(t, performJSON(t, handler, "/api/simulate", baselineRequest))

	if first.Cached || !second.Cached {
		t.Fatalf("expected miss then hit, got %v then %v", first.Cached, second.Cached)
	}
	if first.RunID == second.RunID {
		t.Fatal("every request should get its own run id")
	}
	if first.Result.TotalHours != second.Result.TotalHours || first.CSV != second.CSV {
		t.Fatal("cached response differs from the computed one")
	}
	if results.Len() != 1 {
		t.Fatalf("expected one cache entry, got %d", results.Len())
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestHandleSimulateCacheFailureIgnored(t *testing.T) {
	handler := newTestHandler(t, failingCache{}, constants.DefaultMaxUploadSizeBytes)

	rr := performJSON(t, handler, "/api/simulate", baselineRequest)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 despite cache failure, got %d", rr.Code)
	}
	if decodeSimulate(t, rr).Cached {
		t.Fatal("response should not be marked cached")
	}
}

func TestHandleSimulateInlineStandards(t *testing.T) {
	handler := NewHandler(nil, nil, nil, Options{})

	body := `{
  "parameters": {"productivityPct": 100},
  "volumes": [{"flow": "Amana", "direction": "Import", "amount": 480, "period": "daily"}],
  "standards": [{"name": "Tri", "unit": "colis", "averageMinutes": 1, "flowType": "Amana"}]
}`
	rr := performJSON(t, handler, "/api/simulate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeSimulate(t, rr)
	if resp.Center != defaultCenter {
		t.Fatalf("expected default center, got %q", resp.Center)
	}
	if resp.StandardsVersion != 0 {
		t.Fatalf("inline standards should report version 0, got %d", resp.StandardsVersion)
	}
	if resp.Result.TotalHours != 8 || resp.Result.FTERounded != 1 {
		t.Fatalf("expected 8 hours and 1 FTE, got %v and %v", resp.Result.TotalHours, resp.Result.FTERounded)
	}
	if resp.Result.Final.MOD != 1 {
		t.Fatalf("expected MOD created from the gap, got %+v", resp.Result.Final)
	}
}

func TestHandleSimulateErrors(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		maxUploadSize int64
		status        int
		message       string
	}{
		{
			name:    "unknown center",
			body:    `{"center": "atlantis"}`,
			status:  http.StatusBadRequest,
			message: `unknown center "atlantis"`,
		},
		{
			name:    "malformed json",
			body:    `{"center": `,
			status:  http.StatusBadRequest,
			message: "failed to decode request",
		},
		{
			name:    "invalid inline standards",
			body:    `{"standards": [{"unit": "colis"}]}`,
			status:  http.StatusBadRequest,
			message: "invalid standards",
		},
		{
			name:          "body too large",
			body:          baselineRequest,
			maxUploadSize: 64,
			status:        http.StatusRequestEntityTooLarge,
			message:       "request exceeds limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, nil, tt.maxUploadSize)
			rr := performJSON(t, handler, "/api/simulate", tt.body)

			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if !strings.Contains(resp["error"], tt.message) {
				t.Fatalf("expected error containing %q, got %q", tt.message, resp["error"])
			}
		})
	}
}

func TestHandleSimulateWarnings(t *testing.T) {
	handler := newTestHandler(t, nil, constants.DefaultMaxUploadSizeBytes)

	body := `{
  "center": "cndp",
  "parameters": {"productivityPct": 500},
  "volumes": [{"flow": "CO", "direction": "Export", "amount": -5}]
}`
	resp := decodeSimulate(t, performJSON(t, handler, "/api/simulate", body))

	joined := strings.Join(resp.Warnings, "\n")
	for _, want := range []string{"productivityPct 500", "amount -5 treated as 0", "container ratios not set"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected warning containing %q in %v", want, resp.Warnings)
		}
	}
}

func TestHandleExport(t *testing.T) {
	handler := newTestHandler(t, nil, constants.DefaultMaxUploadSizeBytes)

	rr := performJSON(t, handler, "/api/export", baselineRequest)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected CSV content type, got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "staffing-cndp.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV body: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("expected header and 6 task rows, got %d", len(records))
	}
	if records[1][2] != "Tri Amana arrivee" || records[1][6] != "2000" {
		t.Fatalf("unexpected first task row %v", records[1])
	}
}

func TestHandleBatchSuccess(t *testing.T) {
	handler := newTestHandler(t, nil, constants.DefaultMaxUploadSizeBytes)

	data, err := os.ReadFile(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}

	rr := performUpload(t, handler, string(data), "test_config.yaml")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp batchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Runs) != 2 {
		t.Fatalf("expected 2 active scenarios, got %d", len(resp.Runs))
	}
	if resp.Runs[0].Name != "cndp baseline" || resp.Runs[1].Name != "ccp with complexity" {
		t.Fatalf("unexpected run order %q, %q", resp.Runs[0].Name, resp.Runs[1].Name)
	}
	if resp.Runs[0].Result.FTERounded != 4 {
		t.Fatalf("expected 4 FTE for the baseline, got %v", resp.Runs[0].Result.FTERounded)
	}
	if resp.CSV == "" || resp.Duration == "" || resp.RunID == "" {
		t.Fatal("expected csv, duration and run id in response")
	}
}

func TestHandleBatchErrors(t *testing.T) {
	handler := newTestHandler(t, nil, constants.DefaultMaxUploadSizeBytes)

	t.Run("invalid yaml", func(t *testing.T) {
		rr := performUpload(t, handler, "common: [", "config.yaml")
		assertError(t, rr, http.StatusBadRequest, "error reading config data")
	})

	t.Run("unknown center", func(t *testing.T) {
		content := "scenarios:\n  - name: x\n    active: true\n    center: atlantis\n"
		rr := performUpload(t, handler, content, "config.yaml")
		assertError(t, rr, http.StatusBadRequest, "unknown center")
	})

	t.Run("missing file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		if err := writer.Close(); err != nil {
			t.Fatalf("failed to close writer: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/batch", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assertError(t, rr, http.StatusBadRequest, "missing configuration file")
	})

	t.Run("upload too large", func(t *testing.T) {
		small := newTestHandler(t, nil, 64)
		rr := performUpload(t, small, strings.Repeat("a", 128), "config.yaml")
		assertError(t, rr, http.StatusRequestEntityTooLarge, "upload exceeds limit")
	})
}

func TestHandleCenters(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/centers", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp struct {
		Centers []centerInfo `json:"centers"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	names := make([]string, 0, len(resp.Centers))
	for _, c := range resp.Centers {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "bandoeng,cci,ccp,cna,cndp,general" {
		t.Fatalf("unexpected centers %s", got)
	}

	for _, c := range resp.Centers {
		if c.Name != "cna" {
			continue
		}
		if !c.ApplyShift || c.SplitSegments {
			t.Fatalf("unexpected cna toggles %+v", c)
		}
		for _, unit := range c.Units {
			if unit == "courrier" {
				t.Fatal("cna should not convert mail units")
			}
		}
		if strings.Join(c.Flows, ",") != "Amana" {
			t.Fatalf("expected cna to know only Amana, got %v", c.Flows)
		}
	}
}

func TestHandleVersion(t *testing.T) {
	store, err := referentiel.NewStore(zap.NewNop(), referentielPath)
	if err != nil {
		t.Fatalf("failed to load test référentiel: %v", err)
	}
	handler := NewHandler(zap.NewNop(), store, nil, Options{Version: " 1.2.3 "})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp struct {
		Version          string `json:"version"`
		StandardsVersion int    `json:"standardsVersion"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Version != "1.2.3" || resp.StandardsVersion != 1 {
		t.Fatalf("unexpected version payload %+v", resp)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, Options{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/simulate"},
		{http.MethodGet, "/api/export"},
		{http.MethodGet, "/api/batch"},
		{http.MethodPost, "/api/centers"},
		{http.MethodPost, "/api/version"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected status 405, got %d", tt.method, tt.path, rr.Code)
		}
	}
}

func performJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func performUpload(t *testing.T, handler http.Handler, content, filename string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/batch", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func decodeSimulate(t *testing.T, rr *httptest.ResponseRecorder) simulateResponse {
	t.Helper()

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp simulateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], message) {
		t.Fatalf("expected error containing %q, got %q", message, resp["error"])
	}
}
