// SPDX-License-Identifier: MIT

package service_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/katalvlaran/deprisk/scenario"
	"github.com/katalvlaran/deprisk/service"
)

func init() { gin.SetMode(gin.TestMode) }

func ptr(v float64) *float64 { return &v }

func newServer(t *testing.T, cfg service.Config) http.Handler {
	t.Helper()
	s, err := service.New(cfg)
	require.NoError(t, err)

	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

type risksBody struct {
	Risks     *orderedmap.OrderedMap[string, float64] `json:"risks"`
	Threshold float64                                  `json:"threshold"`
	Above     []string                                 `json:"above"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func TestServer_ChainFlow(t *testing.T) {
	h := newServer(t, service.Config{Threshold: ptr(0.3)})

	for _, id := range []string{"s", "c", "v", "p"} {
		rec := do(t, h, http.MethodPost, "/v1/components", `{"id":"`+id+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	for _, e := range [][2]string{{"s", "v"}, {"c", "v"}, {"v", "p"}} {
		rec := do(t, h, http.MethodPut, "/v1/edges", `{"from":"`+e[0]+`","to":"`+e[1]+`","weight":0.3333333333333333}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/v1/risks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[risksBody](t, rec)
	var keys []string
	for pair := body.Risks.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"s", "c", "v", "p"}, keys)
	p, _ := body.Risks.Get("p")
	assert.InDelta(t, 0.35016396604938, p, 1e-12)
	assert.Equal(t, []string{"v", "p"}, body.Above)

	rec = do(t, h, http.MethodGet, "/v1/vertices/v", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[service.VertexResponse](t, rec)
	assert.Equal(t, "v", v.ID)
	assert.Equal(t, 0.25, v.Direct)
	assert.InDelta(t, 0.36979166666666, v.Total, 1e-12)
	assert.False(t, v.Stale)

	rec = do(t, h, http.MethodGet, "/v1/risks/above?threshold=0.36", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"threshold":0.36,"above":["v"]}`, rec.Body.String())

	rec = do(t, h, http.MethodPatch, "/v1/edges", `{"from":"v","to":"p","weight":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"from":"v","to":"p","weight":1}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/v1/edges?from=v&to=p", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/v1/edges", "")
	assert.JSONEq(t, `{"edges":[{"from":"s","to":"v","weight":0.3333333333333333},{"from":"c","to":"v","weight":0.3333333333333333}]}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/v1/vertices/p/risk", `{"risk":0.9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[service.VertexResponse](t, rec)
	assert.True(t, v.Stale)
	assert.Equal(t, 0.9, v.Direct)

	rec = do(t, h, http.MethodDelete, "/v1/vertices/s", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodPost, "/v1/rebuild", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/healthz", "")
	assert.JSONEq(t, `{"status":"ok","vertices":3}`, rec.Body.String())
}

func TestServer_GeneratedIDs(t *testing.T) {
	h := newServer(t, service.Config{})

	rec := do(t, h, http.MethodPost, "/v1/components", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	v := decode[service.VertexResponse](t, rec)
	_, err := uuid.Parse(v.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0.25, v.Direct)

	rec = do(t, h, http.MethodPost, "/v1/gates", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	g := decode[service.VertexResponse](t, rec)
	assert.NotEqual(t, v.ID, g.ID)
	assert.Contains(t, rec.Body.String(), `"kind":"and_gate"`)
}

func TestServer_ErrorMapping(t *testing.T) {
	h := newServer(t, service.Config{Capacity: 4})
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/components", `{"id":"a"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/gates", `{"id":"G1"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/gates", `{"id":"G2"}`).Code)

	cases := []struct {
		name, method, path, body string
		status                   int
		code                     string
	}{
		{"duplicate", http.MethodPost, "/v1/gates", `{"id":"a"}`, http.StatusConflict, "duplicate_handle"},
		{"unknown vertex", http.MethodGet, "/v1/vertices/zz", "", http.StatusNotFound, "invalid_handle"},
		{"unknown delete", http.MethodDelete, "/v1/vertices/zz", "", http.StatusNotFound, "invalid_handle"},
		{"self loop", http.MethodPut, "/v1/edges", `{"from":"a","to":"a"}`, http.StatusBadRequest, "self_loop"},
		{"weight", http.MethodPut, "/v1/edges", `{"from":"a","to":"G1","weight":1.5}`, http.StatusBadRequest, "invalid_weight"},
		{"risk", http.MethodPut, "/v1/vertices/a/risk", `{"risk":-1}`, http.StatusBadRequest, "invalid_risk"},
		{"missing risk", http.MethodPut, "/v1/vertices/a/risk", `{}`, http.StatusBadRequest, "bad_request"},
		{"missing weight", http.MethodPatch, "/v1/edges", `{"from":"a","to":"G1"}`, http.StatusBadRequest, "bad_request"},
		{"missing ends", http.MethodDelete, "/v1/edges?from=a", "", http.StatusBadRequest, "bad_request"},
		{"bad json", http.MethodPost, "/v1/components", `{"id":`, http.StatusBadRequest, "bad_request"},
		{"bad threshold", http.MethodGet, "/v1/risks/above?threshold=high", "", http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[errorBody](t, rec).Error.Code)
		})
	}

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/components", `{"id":"x"}`).Code)
	rec := do(t, h, http.MethodPost, "/v1/components", `{"id":"y"}`)
	assert.Equal(t, http.StatusInsufficientStorage, rec.Code)
	assert.Equal(t, "capacity_exceeded", decode[errorBody](t, rec).Error.Code)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/v1/edges", `{"from":"G1","to":"G2"}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/v1/edges", `{"from":"G2","to":"G1"}`).Code)
	rec = do(t, h, http.MethodGet, "/v1/risks", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "gate_cycle", decode[errorBody](t, rec).Error.Code)
}

func TestServer_ScenarioAndMetrics(t *testing.T) {
	doc, err := scenario.Parse(strings.NewReader(`
components:
  - {id: a, risk: 0.5}
  - {id: b, risk: 0.5}
  - {id: c, risk: 0.5}
gates:
  - {id: G}
edges:
  - {from: a, to: G}
  - {from: b, to: G}
  - {from: G, to: c}
threshold: 0.6
`))
	require.NoError(t, err)
	h := newServer(t, service.Config{Scenario: doc})

	rec := do(t, h, http.MethodGet, "/v1/risks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[risksBody](t, rec)
	assert.Equal(t, 0.6, body.Threshold)
	assert.Equal(t, []string{"c"}, body.Above)
	_, present := body.Risks.Get("G")
	assert.False(t, present)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `deprisk_mutations_total{op="add_edge",result="ok"} 3`)
	assert.Contains(t, rec.Body.String(), "deprisk_vertices 4")
}

func TestNew_ScenarioError(t *testing.T) {
	doc, err := scenario.Parse(strings.NewReader("components:\n  - {id: a}\nedges:\n  - {from: a, to: a}\n"))
	require.NoError(t, err)
	_, err = service.New(service.Config{Scenario: doc})
	assert.Error(t, err)
}

func TestServer_ThresholdPrecedence(t *testing.T) {
	h := newServer(t, service.Config{Threshold: ptr(0)})
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/components", `{"id":"a"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/components", `{"id":"b","risk":0}`).Code)

	rec := do(t, h, http.MethodGet, "/v1/risks/above", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"threshold":0,"above":["a"]}`, rec.Body.String())

	doc, err := scenario.Parse(strings.NewReader("components:\n  - {id: a}\nthreshold: 0.6\n"))
	require.NoError(t, err)
	rec = do(t, newServer(t, service.Config{Scenario: doc, Threshold: ptr(0.1)}), http.MethodGet, "/v1/risks", "")
	assert.Equal(t, 0.1, decode[risksBody](t, rec).Threshold, "explicit config wins over the scenario")

	rec = do(t, newServer(t, service.Config{}), http.MethodGet, "/v1/risks", "")
	assert.Equal(t, scenario.DefaultThreshold, decode[risksBody](t, rec).Threshold)
}
