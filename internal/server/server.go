// Package server exposes the build pipeline over HTTP. It shares the
// pipeline runner with the CLI so both entry points produce identical
// build documents.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	sperrors "github.com/caldwen/spellweave/pkg/errors"
	"github.com/caldwen/spellweave/pkg/graph"
	"github.com/caldwen/spellweave/pkg/pipeline"
	"github.com/caldwen/spellweave/pkg/spell"
	"github.com/caldwen/spellweave/pkg/store"
	"github.com/caldwen/spellweave/pkg/tree"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 8 << 20
)

// Server handles HTTP requests for builds and repairs.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	store  *store.Store
	logger *log.Logger
}

// New creates a Server backed by the given runner. The store is optional;
// without it, build persistence endpoints return NOT_FOUND-style errors.
func New(runner *pipeline.Runner, st *store.Store, logger *log.Logger) *Server {
	s := &Server{
		runner: runner,
		store:  st,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/builds", s.handleCreateBuild)
		r.Get("/builds", s.handleListBuilds)
		r.Get("/builds/{id}", s.handleGetBuild)
		r.Post("/repairs", s.handleRepair)
	})

	s.router = r
	return s
}

// Router returns the underlying HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe starts the server and blocks until ctx is canceled or the
// listener fails. On cancellation it drains in-flight requests before
// returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// buildRequest is the POST /builds body: the spell list plus settings,
// mirroring the manifest file format the CLI consumes.
type buildRequest struct {
	Spells   []spell.Spell  `json:"spells"`
	Settings spell.Settings `json:"settings"`
	Refresh  bool           `json:"refresh,omitempty"`
	Persist  bool           `json:"persist,omitempty"`
}

type buildResponse struct {
	Doc   graph.BuildDoc `json:"build"`
	Stats pipeline.Stats `json:"stats"`
	Saved bool           `json:"saved"`
}

func (s *Server) handleCreateBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Spells:   req.Spells,
		Settings: req.Settings,
		Refresh:  req.Refresh,
		Logger:   s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := buildResponse{Doc: result.Doc, Stats: result.Stats}
	if req.Persist {
		if s.store == nil {
			s.writeError(w, r, sperrors.New(sperrors.ErrCodeStorage, "no store configured"))
			return
		}
		if err := s.store.SaveBuild(r.Context(), result.Doc); err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Saved = true
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, sperrors.New(sperrors.ErrCodeStorage, "no store configured"))
		return
	}
	id := chi.URLParam(r, "id")
	doc, err := s.store.GetBuild(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, sperrors.New(sperrors.ErrCodeStorage, "no store configured"))
		return
	}
	ids, err := s.store.ListBuilds(r.Context(), 100)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"builds": ids})
}

// repairRequest is the POST /repairs body: externally produced edge lists
// plus the spells they reference. Each list is repaired independently and
// the actions taken are reported per school.
type repairRequest struct {
	Spells   []spell.Spell    `json:"spells"`
	Settings spell.Settings   `json:"settings"`
	Trees    []graph.EdgeList `json:"trees"`
}

type repairResponse struct {
	Trees   []graph.TreeDoc        `json:"trees"`
	Reports map[string]tree.Report `json:"reports"`
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	var req repairRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Trees) == 0 {
		s.writeError(w, r, sperrors.New(sperrors.ErrCodeInvalidEdgeList, "no edge lists supplied"))
		return
	}
	req.Settings.ValidateAndSetDefaults()

	trees, reports := s.runner.RepairExternal(r.Context(), req.Trees, req.Spells, req.Settings)
	writeJSON(w, http.StatusOK, repairResponse{Trees: trees, Reports: reports})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return sperrors.Wrap(sperrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := sperrors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: sperrors.UserMessage(err),
	}})
}

func statusFor(code sperrors.Code) int {
	switch code {
	case sperrors.ErrCodeInvalidInput, sperrors.ErrCodeInvalidManifest,
		sperrors.ErrCodeInvalidSpell, sperrors.ErrCodeInvalidSchool,
		sperrors.ErrCodeInvalidEdgeList:
		return http.StatusBadRequest
	case sperrors.ErrCodeNotFound, sperrors.ErrCodeBuildNotFound,
		sperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case sperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out if Encode fails; nothing left to signal.
	_ = json.NewEncoder(w).Encode(v)
}
