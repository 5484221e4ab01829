package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"causalkv/internal/op"
	"causalkv/internal/replication"
	"causalkv/internal/transport"
)

func newTestRouter(t *testing.T, selfID string, members []string) (*gin.Engine, *replication.Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node := replication.New(selfID, members, nil, transport.NewMemory(), nil)
	t.Cleanup(node.Close)

	r := gin.New()
	New(node, prometheus.NewRegistry()).SetupRoutes(r)
	return r, node
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateThenGetRecord(t *testing.T) {
	r, _ := newTestRouter(t, "n1", []string{"n1"})

	w := doRequest(r, http.MethodPost, "/alumnos", map[string]any{"key": "a1", "name": "ada"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/alumnos/a1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "a1", got["key"])
	assert.Equal(t, "ada", got["payload"].(map[string]any)["name"])
}

func TestCreateRequiresKeyField(t *testing.T) {
	r, _ := newTestRouter(t, "n1", []string{"n1"})

	w := doRequest(r, http.MethodPost, "/alumnos", map[string]any{"name": "ada"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOnExistingKeyReturnsValidationError(t *testing.T) {
	r, _ := newTestRouter(t, "n1", []string{"n1"})

	doRequest(r, http.MethodPost, "/alumnos", map[string]any{"key": "a1", "name": "ada"})
	w := doRequest(r, http.MethodPost, "/alumnos", map[string]any{"key": "a1", "name": "eve"})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "validation_error", got["kind"])
}

func TestGetMissingRecordReturns404(t *testing.T) {
	r, _ := newTestRouter(t, "n1", []string{"n1"})

	w := doRequest(r, http.MethodGet, "/alumnos/absent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecord(t *testing.T) {
	r, _ := newTestRouter(t, "n1", []string{"n1"})

	doRequest(r, http.MethodPost, "/alumnos", map[string]any{"key": "a1", "name": "ada"})
	w := doRequest(r, http.MethodPut, "/alumnos/a1", map[string]any{"name": "eve"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/alumnos/a1", nil)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "eve", got["payload"].(map[string]any)["name"])
}

func TestReplicateEndpointAppliesRemoteOperation(t *testing.T) {
	r, node := newTestRouter(t, "n2", []string{"n1", "n2"})

	o := op.Operation{
		OpID:    "op-1",
		Kind:    op.Create,
		Key:     "a1",
		Payload: map[string]any{"name": "ada"},
		Origin:  "n1",
		VC:      map[string]uint64{"n1": 1},
	}

	w := doRequest(r, http.MethodPost, "/replicate", o)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["delivered_now"])

	rec, ok := node.Get("a1")
	require.True(t, ok)
	assert.Equal(t, "ada", rec.Payload["name"])
}

func TestRecoveryMiddlewareReturnsStructuredError(t *testing.T) {
	r, _ := newTestRouter(t, "n1", []string{"n1"})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := doRequest(r, http.MethodGet, "/panic", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "fatal_error", got["kind"])
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, "n1", []string{"n1"})

	w := doRequest(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "n1", got["node_id"])
}
