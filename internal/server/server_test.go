package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/caldwen/spellweave/pkg/cache"
	sperrors "github.com/caldwen/spellweave/pkg/errors"
	"github.com/caldwen/spellweave/pkg/pipeline"
)

func testServer() *Server {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	return New(runner, nil, logger)
}

func TestHealthz(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestCreateBuild(t *testing.T) {
	s := testServer()

	reqBody := `{
		"spells": [
			{"id": "dest_001", "name": "Flames", "school": "Destruction", "level": "novice", "effect": "A gout of fire."},
			{"id": "dest_002", "name": "Firebolt", "school": "Destruction", "level": "apprentice", "effect": "A bolt of fire."}
		],
		"settings": {"seed": 7}
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/builds", strings.NewReader(reqBody))
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Build struct {
			Seed  uint64 `json:"seed"`
			Trees []struct {
				School string `json:"school"`
				Root   string `json:"root"`
			} `json:"trees"`
		} `json:"build"`
		Saved bool `json:"saved"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Build.Seed != 7 {
		t.Errorf("seed = %d, want 7", resp.Build.Seed)
	}
	if len(resp.Build.Trees) != 1 || resp.Build.Trees[0].Root != "dest_001" {
		t.Errorf("unexpected trees: %+v", resp.Build.Trees)
	}
	if resp.Saved {
		t.Error("saved = true without persist")
	}
}

func TestCreateBuild_InvalidBody(t *testing.T) {
	s := testServer()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"spells": [`},
		{"unknown field", `{"spells": [], "bogus": true}`},
		{"empty spell list", `{"spells": []}`},
		{"bad spell id", `{"spells": [{"id": "../x", "school": "Destruction"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/builds", strings.NewReader(tt.body))
			s.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body: %s", rec.Code, rec.Body)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code == "" || resp.Error.Message == "" {
				t.Errorf("incomplete error body: %+v", resp)
			}
		})
	}
}

func TestCreateBuild_PersistWithoutStore(t *testing.T) {
	s := testServer()

	body := `{"spells": [{"id": "a", "school": "Destruction"}], "persist": true}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/builds", strings.NewReader(body))
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetBuild_NoStore(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/builds/some-id", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRepair(t *testing.T) {
	s := testServer()

	reqBody := map[string]any{
		"spells": []map[string]any{
			{"id": "a", "name": "Candlelight", "school": "Restoration", "effect": "A hovering light."},
			{"id": "b", "name": "Healing", "school": "Restoration", "effect": "Restores health."},
			{"id": "c", "name": "Fast Healing", "school": "Restoration", "effect": "Restores more health."},
		},
		"settings": map[string]any{},
		"trees": []map[string]any{{
			"school": "Restoration",
			"edges": []map[string]string{
				{"parent": "a", "child": "b"},
				{"parent": "b", "child": "c"},
				{"parent": "c", "child": "b"},
			},
		}},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/repairs", bytes.NewReader(data))
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Trees []struct {
			School string `json:"school"`
			Root   string `json:"root"`
			Edges  []struct {
				Parent string `json:"parent"`
				Child  string `json:"child"`
			} `json:"edges"`
		} `json:"trees"`
		Reports map[string]json.RawMessage `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Trees) != 1 {
		t.Fatalf("got %d trees, want 1", len(resp.Trees))
	}
	tr := resp.Trees[0]
	if tr.Root == "" {
		t.Error("repaired tree has no root")
	}
	if len(tr.Edges) >= 3 {
		t.Errorf("cycle not broken: %d edges", len(tr.Edges))
	}
	if _, ok := resp.Reports["Restoration"]; !ok {
		t.Error("expected a repair report for Restoration")
	}
}

func TestRepair_NoTrees(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/repairs", strings.NewReader(`{"trees": []}`))
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code sperrors.Code
		want int
	}{
		{sperrors.ErrCodeInvalidInput, http.StatusBadRequest},
		{sperrors.ErrCodeInvalidSpell, http.StatusBadRequest},
		{sperrors.ErrCodeInvalidEdgeList, http.StatusBadRequest},
		{sperrors.ErrCodeBuildNotFound, http.StatusNotFound},
		{sperrors.ErrCodeFileNotFound, http.StatusNotFound},
		{sperrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{sperrors.ErrCodeStorage, http.StatusInternalServerError},
		{sperrors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
