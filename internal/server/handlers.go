package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/verte-zerg/salaryscope/internal/chart"
	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

type errorResponse struct {
	Error string `json:"error"`
}

type recordsResponse struct {
	Source      string         `json:"source"`
	RowsRead    int            `json:"rows_read"`
	RowsKept    int            `json:"rows_kept"`
	RowsDropped int            `json:"rows_dropped"`
	Records     []model.Record `json:"records"`
}

type optionsResponse struct {
	Field  model.Field `json:"field"`
	Values []string    `json:"values"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	records := ds.Records()
	if records == nil {
		records = []model.Record{}
	}
	render.JSON(w, r, recordsResponse{
		Source:      ds.Source(),
		RowsRead:    ds.RowsRead(),
		RowsKept:    ds.Len(),
		RowsDropped: ds.Dropped(),
		Records:     records,
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	field, ok := model.ParseField(chi.URLParam(r, "field"))
	if !ok {
		s.badRequest(w, r, fmt.Errorf("unknown field %q", chi.URLParam(r, "field")))
		return
	}
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	values := chart.Options(ds, field)
	if values == nil {
		values = []string{}
	}
	render.JSON(w, r, optionsResponse{Field: field, Values: values})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	req, err := histogramRequest(r.URL.Query())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.renderChart(w, r, req)
}

func (s *Server) handleBox(w http.ResponseWriter, r *http.Request) {
	split, err := boolParam(r.URL.Query(), "split")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.renderChart(w, r, model.ChartRequest{Kind: model.KindBox, ColorSplit: split})
}

func (s *Server) renderChart(w http.ResponseWriter, r *http.Request, req model.ChartRequest) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	spec := chart.Render(ds, req)
	s.metrics.charts.WithLabelValues(string(spec.Kind), string(spec.GroupBy)).Inc()
	render.JSON(w, r, spec)
}

func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*survey.Dataset, bool) {
	ds, err := s.data.Dataset(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "dataset unavailable", slog.Any("error", err))
		msg := "dataset unavailable"
		if !errors.Is(err, survey.ErrDataUnavailable) {
			msg = err.Error()
		}
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errorResponse{Error: msg})
		return nil, false
	}
	return ds, true
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

// histogramRequest parses by, filter, normalize and bin_size. A filter key
// that is present, even empty, is a selection.
func histogramRequest(q url.Values) (model.ChartRequest, error) {
	req := model.ChartRequest{Kind: model.KindHistogram, GroupBy: model.FieldSex}
	if by := q.Get("by"); by != "" {
		field, ok := model.ParseField(by)
		if !ok {
			return req, fmt.Errorf("unknown field %q", by)
		}
		req.GroupBy = field
	}
	if raw, ok := q["filter"]; ok {
		req.Filter = parseSelection(raw)
	}
	normalize, err := boolParam(q, "normalize")
	if err != nil {
		return req, err
	}
	req.Normalize = normalize
	if raw := q.Get("bin_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid bin_size %q", raw)
		}
		req.BinSize = n
	}
	return req, nil
}

func parseSelection(raw []string) model.Selection {
	sel := model.NewSelection()
	for _, item := range raw {
		for _, v := range strings.Split(item, ",") {
			if v = strings.TrimSpace(v); v != "" {
				sel[v] = struct{}{}
			}
		}
	}
	return sel
}

func boolParam(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}
