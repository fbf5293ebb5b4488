package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

type staticSource struct {
	ds  *survey.Dataset
	err error
}

func (s staticSource) Dataset(context.Context) (*survey.Dataset, error) {
	return s.ds, s.err
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	ds := survey.NewDataset("mem", []model.Record{
		{Company: "gofore", Sex: model.SexMale, Experience: "5", Salary: 3100, Location: "helsinki"},
		{Company: "siili", Sex: model.SexFemale, Experience: "10", Salary: 3400, Location: "tampere"},
		{Company: "gofore", Sex: model.SexFemale, Experience: "2", Salary: 4600, Location: "helsinki"},
	})
	srv := httptest.NewServer(New(staticSource{ds: ds}, nil))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRecords(t *testing.T) {
	srv := testServer(t)
	var body recordsResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/records", &body))
	assert.Equal(t, 3, body.RowsKept)
	assert.Equal(t, "mem", body.Source)
	assert.Len(t, body.Records, 3)
}

func TestOptions(t *testing.T) {
	srv := testServer(t)
	var body optionsResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/options/company", &body))
	assert.Equal(t, []string{"gofore", "siili"}, body.Values)

	var errBody errorResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/options/salary", &errBody))
	assert.Contains(t, errBody.Error, "salary")
}

func TestHistogramEndpoint(t *testing.T) {
	srv := testServer(t)
	var spec model.ChartSpec
	url := srv.URL + "/api/charts/histogram?by=company&normalize=true&bin_size=500"
	require.Equal(t, http.StatusOK, getJSON(t, url, &spec))
	assert.Equal(t, 3, spec.Rows)
	assert.Equal(t, 500, spec.BinSize)
	assert.True(t, spec.Normalized)
	require.Len(t, spec.Histograms, 2)
	for _, s := range spec.Histograms {
		sum := 0.0
		for _, b := range s.Bins {
			sum += b.Value
		}
		assert.InDelta(t, 100, sum, 1e-9)
	}
}

func TestHistogramFilter(t *testing.T) {
	srv := testServer(t)

	var empty model.ChartSpec
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/charts/histogram?by=company&filter=", &empty))
	assert.Equal(t, 0, empty.Rows)
	assert.Empty(t, empty.Histograms)

	var one model.ChartSpec
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/charts/histogram?by=location&filter=tampere,nowhere", &one))
	assert.Equal(t, 1, one.Rows)
}

func TestHistogramBadParams(t *testing.T) {
	srv := testServer(t)
	for _, query := range []string{"by=salary", "normalize=maybe", "bin_size=big"} {
		var body errorResponse
		assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/charts/histogram?"+query, &body), query)
		assert.NotEmpty(t, body.Error)
	}
}

func TestBoxEndpoint(t *testing.T) {
	srv := testServer(t)
	var spec model.ChartSpec
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/charts/box?split=true", &spec))
	assert.Equal(t, model.KindBox, spec.Kind)
	require.Len(t, spec.Boxes, 2)
	assert.Equal(t, model.SexMale, spec.Boxes[0].Name)
}

func TestDatasetUnavailable(t *testing.T) {
	srv := httptest.NewServer(New(staticSource{err: fmt.Errorf("open: %w", survey.ErrDataUnavailable)}, nil))
	t.Cleanup(srv.Close)

	var body errorResponse
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/api/charts/box", &body))
	assert.Equal(t, "dataset unavailable", body.Error)
}

func TestMetricsExposeCounters(t *testing.T) {
	srv := testServer(t)
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/charts/box", nil))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `salaryscope_charts_rendered_total{group_by="experience",kind="box"} 1`), text)
	assert.Contains(t, text, `route="/api/charts/box"`)
}

func TestMetricsUnmatchedRouteLabel(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/no-such-page-4711")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `route="unmatched"`)
	assert.NotContains(t, text, "no-such-page-4711")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(staticSource{}, nil)
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
