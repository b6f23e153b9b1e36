package tea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"electrolyser_tea/pkg/core/params"
	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/report"
	"electrolyser_tea/pkg/core/sensitivity"
	"electrolyser_tea/pkg/core/store"
	"electrolyser_tea/pkg/core/utils"
	"electrolyser_tea/pkg/models"
)

const maxBodyBytes = 1 << 20

// RunStore reads back stored runs.
type RunStore interface {
	Load(ctx context.Context, runID string) (*pipeline.Result, error)
	List(ctx context.Context, limit int) ([]store.RunEntry, error)
}

// Handler holds dependencies for the TEA endpoints
type Handler struct {
	Source       store.Source
	Orchestrator *pipeline.Orchestrator
	Runs         RunStore
	Logger       *zap.Logger
}

// NewHandler creates a new TEA handler
func NewHandler(src store.Source, orch *pipeline.Orchestrator, runs RunStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Source:       src,
		Orchestrator: orch,
		Runs:         runs,
		Logger:       logger,
	}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/tea/run", h.HandleRun)
	mux.HandleFunc("/api/tea/sweep", h.HandleSweep)
	mux.HandleFunc("/api/tea/runs", h.HandleRuns)
	mux.HandleFunc("/api/tea/report", h.HandleReport)
}

// HandleRun executes the full pipeline once.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodPost) {
		return
	}

	var req models.RunRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, status, err := h.loadParams(r.Context(), req.Parameters)
	if err != nil {
		writeError(w, status, err)
		return
	}

	res := h.Orchestrator.Run(r.Context(), st, req.Overrides())
	if !res.Complete {
		writeIncomplete(w, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSweep runs the baseline and the sensitivity grid of the requested parameter.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodPost) {
		return
	}

	var req models.SweepRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	param, err := sensitivity.ParseParameter(req.Param)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, status, err := h.loadParams(r.Context(), req.Parameters)
	if err != nil {
		writeError(w, status, err)
		return
	}

	rep, err := h.Orchestrator.Sweep(r.Context(), st, req.Overrides(), param)
	if err != nil {
		if rep != nil && rep.Base != nil && !rep.Base.Complete {
			writeIncomplete(w, rep.Base)
			return
		}
		h.Logger.Error("sweep failed", zap.String("param", string(param)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSweepResponse(rep))
}

// HandleRuns returns one stored run (?id=) or the most recent runs (?limit=, default 20).
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodGet) {
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		res, err := h.Runs.Load(r.Context(), id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", s))
			return
		}
		limit = n
	}
	entries, err := h.Runs.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []store.RunEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleReport renders a report for a stored run (?id=) or for a fresh sweep
// (?param=, default discount_rate). ?format=md returns the Markdown source.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	var md string
	status := http.StatusOK
	if id := q.Get("id"); id != "" {
		res, err := h.Runs.Load(r.Context(), id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		md = report.Markdown(res, nil)
	} else {
		param, err := sensitivity.ParseParameter(q.Get("param"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		st, code, err := h.loadParams(r.Context(), nil)
		if err != nil {
			writeError(w, code, err)
			return
		}
		rep, err := h.Orchestrator.Sweep(r.Context(), st, pipeline.Overrides{}, param)
		switch {
		case err == nil:
			md = report.Markdown(rep.Base, rep)
		case rep != nil && rep.Base != nil && !rep.Base.Complete:
			md = report.Markdown(rep.Base, nil)
			status = http.StatusUnprocessableEntity
		default:
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	if q.Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(status)
		io.WriteString(w, md)
		return
	}
	html, err := report.RenderHTML(md)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, html)
}

// decodeBody reads an optional JSON body. Hand-written bodies with trailing commas,
// comments or unquoted keys are accepted.
func (h *Handler) decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	strategy, err := utils.SmartParse(data, v)
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if strategy != "json" {
		h.Logger.Debug("request body parsed leniently", zap.String("strategy", strategy))
	}
	return nil
}

// loadParams loads a fresh snapshot and applies per-request overrides.
func (h *Handler) loadParams(ctx context.Context, overrides map[string]map[string]float64) (*params.Store, int, error) {
	st, err := h.Source.Load(ctx)
	if err != nil {
		h.Logger.Error("failed to load parameters", zap.Error(err))
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to load parameters: %w", err)
	}
	for name, kv := range overrides {
		cat, ok := params.ParseCategory(name)
		if !ok {
			return nil, http.StatusBadRequest, fmt.Errorf("unknown parameter category %q", name)
		}
		for key, v := range kv {
			st = st.With(cat, key, v)
		}
	}
	return st, http.StatusOK, nil
}

func preflight(w http.ResponseWriter, r *http.Request, method string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", method+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return true
	}
	return false
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeIncomplete(w http.ResponseWriter, res *pipeline.Result) {
	msg := "run incomplete"
	if res.Err != nil {
		msg = res.Err.Error()
	}
	writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
		Error:  msg,
		RunID:  res.RunID,
		Stages: res.Stages,
	})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
