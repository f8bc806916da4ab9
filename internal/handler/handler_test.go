package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gentle/internal/core/network"
	"gentle/internal/domain"
	"gentle/internal/service"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc := service.NewSessionService(nil, service.NewEventBus(), service.Options{})
	mux := http.NewServeMux()
	NewSessionHandler(svc).RegisterRoutes(mux)
	return &testServer{t: t, handler: Chain(mux, Recover, CORS, Logger)}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func (s *testServer) createSession() string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/sessions", `{"width":1024,"height":768}`)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var net domain.Network
	decodeBody(s.t, rec, &net)
	return net.SessionID
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createSession()

	rec := srv.do(http.MethodGet, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.SessionSummary
	decodeBody(t, rec, &list)
	assert.Len(t, list, 1)

	rec = srv.do(http.MethodPut, "/api/sessions/"+id+"/viewport", `{"width":400,"height":800}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var net domain.Network
	decodeBody(t, rec, &net)
	assert.True(t, net.Viewport.Narrow)

	rec = srv.do(http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(http.MethodGet, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createSession()
	base := "/api/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed body", http.MethodPost, base + "/names", `{"name":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, base + "/names", `{"nom":"Ann"}`, http.StatusBadRequest},
		{"empty name is rejected", http.MethodPost, base + "/names", `{"name":"  "}`, http.StatusUnprocessableEntity},
		{"respondent is not editable", http.MethodPost, base + "/scalar", `{"index":0,"value":3}`, http.StatusBadRequest},
		{"unknown stage", http.MethodGet, base + "/stages/bogus", "", http.StatusBadRequest},
		{"invalid viewport", http.MethodPost, "/api/sessions", `{"width":0,"height":10}`, http.StatusBadRequest},
		{"unknown session", http.MethodPost, "/api/sessions/missing/names", `{"name":"Ann"}`, http.StatusNotFound},
		{"unknown export format", http.MethodGet, base + "/export/xml", "", http.StatusBadRequest},
		{"drag on linking stage", http.MethodPost, base + "/drag", `{"stage":"linking","index":1,"x":1,"y":1}`, http.StatusBadRequest},
		{"select on cycling stage", http.MethodPost, base + "/select", `{"stage":"cycling","index":1}`, http.StatusBadRequest},
		{"unknown sex", http.MethodPost, base + "/sex", `{"index":1,"sex":"other"}`, http.StatusBadRequest},
		{"non-numeric link index", http.MethodGet, base + "/links/one/2", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.NotEmpty(t, resp.Error)
		})
	}

	t.Run("rejection carries the respondent message", func(t *testing.T) {
		rec := srv.do(http.MethodPost, base+"/names", `{"name":""}`)
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Contains(t, resp.Details, network.ErrEmptyName.Error())
	})
}

func TestElicitationFlow(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createSession()
	base := "/api/sessions/" + id

	for _, name := range []string{"Ann", "Ben", "Cleo"} {
		rec := srv.do(http.MethodPost, base+"/names", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := srv.do(http.MethodPost, base+"/cycle", `{"index":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, base+"/sex", `{"index":2,"sex":"female"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var sexed domain.Node
	decodeBody(t, rec, &sexed)
	assert.Equal(t, domain.SexFemale, sexed.Sex)

	rec = srv.do(http.MethodPost, base+"/scalar", `{"index":1,"value":30}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, base+"/category", `{"index":1,"category_id":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var node domain.Node
	decodeBody(t, rec, &node)
	assert.Equal(t, "Cat1", node.Category)

	rec = srv.do(http.MethodPost, base+"/select", `{"stage":"numeric","index":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var state domain.StageState
	decodeBody(t, rec, &state)
	assert.Equal(t, 3, state.Next)

	rec = srv.do(http.MethodPost, base+"/drag", `{"stage":"liking","index":2,"x":100,"y":50}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, base+"/link", `{"index":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(http.MethodPost, base+"/link", `{"index":2,"positions":[{"x":1,"y":1},{"x":2,"y":2},{"x":3,"y":3},{"x":4,"y":4}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var outcome network.LinkOutcome
	decodeBody(t, rec, &outcome)
	assert.Equal(t, network.LinkCreated, outcome.Event)

	rec = srv.do(http.MethodGet, base+"/links/2/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status LinkStatus
	decodeBody(t, rec, &status)
	assert.True(t, status.Linked)

	rec = srv.do(http.MethodGet, base+"/links/1/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &status)
	assert.False(t, status.Linked)

	rec = srv.do(http.MethodGet, base+"/stages/linking", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.LinkingView
	decodeBody(t, rec, &view)
	assert.Len(t, view.Links, 1)

	rec = srv.do(http.MethodPost, base+"/layout", `{"stage":"closeness"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, base+"/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportImport(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createSession()
	rec := srv.do(http.MethodPost, "/api/sessions/"+id+"/names", `{"name":"Ann"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, format := range []string{"json", "yaml", "dot", "csv"} {
		t.Run(format, func(t *testing.T) {
			rec := srv.do(http.MethodGet, "/api/sessions/"+id+"/export/"+format, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "session."+format)
			assert.NotEmpty(t, rec.Body.Bytes())
		})
	}

	rec = srv.do(http.MethodGet, "/api/sessions/"+id+"/export/json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/import/json", bytes.NewReader(rec.Body.Bytes()))
	imported := httptest.NewRecorder()
	srv.handler.ServeHTTP(imported, req)
	require.Equal(t, http.StatusCreated, imported.Code, imported.Body.String())

	var net domain.Network
	decodeBody(t, imported, &net)
	assert.NotEqual(t, id, net.SessionID)
	assert.Equal(t, 1, net.Alters())

	bad := srv.do(http.MethodPost, "/api/import/json", `{"session_id":"x","nodes":[],"links":[],"foci":[]}`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestMetadataRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var palette []domain.Category
	decodeBody(t, rec, &palette)
	assert.Len(t, palette, 4)

	rec = srv.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware(t *testing.T) {
	t.Run("CORS answers preflight", func(t *testing.T) {
		srv := newTestServer(t)
		rec := srv.do(http.MethodOptions, "/api/sessions", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Recover turns panics into 500", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}), Recover, Logger)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("wrapper forwards Flush", func(t *testing.T) {
		var flushed bool
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f, ok := w.(http.Flusher)
			require.True(t, ok)
			f.Flush()
			flushed = true
		}), Logger)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, flushed)
		assert.True(t, rec.Flushed)
	})
}
