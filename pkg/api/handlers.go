package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/platekit/pkg/annotation"
	"github.com/matzehuels/platekit/pkg/buildinfo"
	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/alloc"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// Well is a coordinate with its well name.
type Well struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Well   string `json:"well"`
}

func toWells(cells []plate.Coordinate) []Well {
	out := make([]Well, len(cells))
	for i, c := range cells {
		out[i] = Well{Row: c.Row, Column: c.Column, Well: c.String()}
	}
	return out
}

type healthResponse struct {
	Status string         `json:"status"`
	Store  string         `json:"store"`
	Build  buildinfo.Info `json:"build"`
}

// StrategyInfo describes one layout strategy.
type StrategyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LayoutResponse is the body of GET /v1/layouts/{strategy}.
type LayoutResponse struct {
	Strategy string `json:"strategy"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	Group    int    `json:"group"`
	Wells    []Well `json:"wells"`
}

// AllocationRequest is the body of POST /v1/plates/{plateID}/allocations.
// Zero geometry fields fall back to the server defaults.
type AllocationRequest struct {
	Strategy string `json:"strategy,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Columns  int    `json:"columns,omitempty"`
	Group    int    `json:"group,omitempty"`
	Key      string `json:"key"`
	Value    string `json:"value,omitempty"`
	Source   string `json:"source,omitempty"`
	Column   *int   `json:"column,omitempty"`
	Count    int    `json:"count,omitempty"`
	DryRun   bool   `json:"dry_run,omitempty"`
}

// AllocationResponse lists the allocated groups. Claimed is false for dry
// runs. Value is the annotation value written to every well.
type AllocationResponse struct {
	PlateID string   `json:"plate_id"`
	Key     string   `json:"key"`
	Value   string   `json:"value,omitempty"`
	Claimed bool     `json:"claimed"`
	Groups  [][]Well `json:"groups"`
}

// AnnotationsResponse lists the annotated wells of a plate under one key.
type AnnotationsResponse struct {
	PlateID string            `json:"plate_id"`
	Key     string            `json:"key"`
	Wells   map[string]string `json:"wells"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: s.store.Name(), Build: buildinfo.Get()})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	strategies := layout.Strategies()
	out := make([]StrategyInfo, len(strategies))
	for i, st := range strategies {
		out[i] = StrategyInfo{Name: st.String(), Description: st.Description()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	strategy, err := layout.ParseStrategy(chi.URLParam(r, "strategy"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	dims := s.defaults.Dimensions()
	group := s.defaults.Group
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"rows", &dims.Rows},
		{"columns", &dims.Columns},
		{"group", &group},
	} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidInput, "%s must be an integer, got %q", p.name, v))
				return
			}
			*p.dst = n
		}
	}

	seq, err := layout.Generate(strategy, dims, group)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		Strategy: strategy.String(),
		Rows:     dims.Rows,
		Columns:  dims.Columns,
		Group:    group,
		Wells:    toWells(seq),
	})
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	plateID := chi.URLParam(r, "plateID")
	if err := perrors.ValidatePlateID(plateID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req AllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	resp, err := s.allocate(r, plateID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) allocate(r *http.Request, plateID string, req AllocationRequest) (*AllocationResponse, error) {
	ctx := r.Context()

	strategy := s.defaults.Strategy
	if req.Strategy != "" {
		var err error
		if strategy, err = layout.ParseStrategy(req.Strategy); err != nil {
			return nil, err
		}
	}
	dims := s.defaults.Dimensions()
	if req.Rows != 0 {
		dims.Rows = req.Rows
	}
	if req.Columns != 0 {
		dims.Columns = req.Columns
	}
	group := s.defaults.Group
	if req.Group != 0 {
		group = req.Group
	}
	count := req.Count
	if count == 0 {
		count = 1
	}

	grid := annotation.NewGrid(s.store, plateID, dims)
	a, err := alloc.NewForStrategy(grid, strategy, group, alloc.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	var groups []plate.Group
	if req.Column != nil {
		groups, err = a.PlanIn(ctx, req.Key, count, group, *req.Column)
	} else {
		groups, err = a.Plan(ctx, req.Key, count, group)
	}
	if err != nil {
		return nil, err
	}

	resp := &AllocationResponse{PlateID: plateID, Key: req.Key}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, toWells(g))
	}
	if req.DryRun {
		return resp, nil
	}

	value := req.Value
	if value == "" {
		if value, err = alloc.NewProvenance(req.Source).Encode(); err != nil {
			return nil, err
		}
	}
	var cells []plate.Coordinate
	for _, g := range groups {
		cells = append(cells, g...)
	}
	if err := a.Claim(ctx, cells, req.Key, value); err != nil {
		return nil, err
	}
	resp.Value = value
	resp.Claimed = true
	return resp, nil
}

func (s *Server) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	plateID, key := chi.URLParam(r, "plateID"), chi.URLParam(r, "key")
	cells, err := s.store.List(r.Context(), plateID, key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := AnnotationsResponse{PlateID: plateID, Key: key, Wells: make(map[string]string, len(cells))}
	for c, v := range cells {
		resp.Wells[c.String()] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	plateID, key := chi.URLParam(r, "plateID"), chi.URLParam(r, "key")
	if err := s.store.Delete(r.Context(), plateID, key); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
