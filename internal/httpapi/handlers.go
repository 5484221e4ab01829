package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"causalkv/internal/errs"
	"causalkv/internal/kvstore"
	"causalkv/internal/op"
)

// Health handles GET /health.
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, a.node.HealthSnapshot())
}

// CreateRecord handles POST /alumnos (local CREATE; propagates). The
// request body is the key plus arbitrary payload fields at the top
// level: {"key": "...", ...payload fields}.
func (a *API) CreateRecord(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errs.Validation("invalid JSON body: %v", err))
		return
	}

	key, ok := body["key"].(string)
	if !ok || key == "" {
		respondError(c, errs.Validation("request body must include a non-empty string \"key\""))
		return
	}
	payload := payloadWithoutKey(body)

	operation, err := a.node.LocalWrite(op.Create, key, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": operation.Key, "vc": operation.VC})
}

// UpdateRecord handles PUT /alumnos/{key} (local UPDATE; propagates).
func (a *API) UpdateRecord(c *gin.Context) {
	key := c.Param("key")

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, errs.Validation("invalid JSON body: %v", err))
		return
	}

	operation, err := a.node.LocalWrite(op.Update, key, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": operation.Key, "vc": operation.VC})
}

// ListRecords handles GET /alumnos: a snapshot at call time.
func (a *API) ListRecords(c *gin.Context) {
	records := a.node.List()
	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, recordJSON(r))
	}
	c.JSON(http.StatusOK, out)
}

// GetRecord handles GET /alumnos/{key}.
func (a *API) GetRecord(c *gin.Context) {
	key := c.Param("key")
	record, ok := a.node.Get(key)
	if !ok {
		respondError(c, errs.NotFound("key %q not found", key))
		return
	}
	c.JSON(http.StatusOK, recordJSON(record))
}

func recordJSON(r kvstore.Record) gin.H {
	return gin.H{"key": r.Key, "payload": r.Payload, "vc_written": r.VCWritten}
}

func payloadWithoutKey(body map[string]any) map[string]any {
	payload := make(map[string]any, len(body))
	for k, v := range body {
		if k == "key" {
			continue
		}
		payload[k] = v
	}
	return payload
}

// Replicate handles POST /replicate, the peer-to-peer entry point.
// Idempotent on op_id: a peer can retry a send it's unsure landed
// without risking a double apply.
func (a *API) Replicate(c *gin.Context) {
	var operation op.Operation
	if err := c.ShouldBindJSON(&operation); err != nil {
		respondError(c, errs.Protocol("malformed operation body: %v", err))
		return
	}

	deliveredNow, err := a.node.InboundReplicate(c.Request.Context(), operation)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accepted": true, "delivered_now": deliveredNow})
}

// GetLog handles GET /log: the ordered operation log, for inspection
// and tests.
func (a *API) GetLog(c *gin.Context) {
	entries := a.node.LogSnapshot()
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Data)
	}
	c.JSON(http.StatusOK, out)
}

// GetQueue handles GET /queue: the currently held operations.
func (a *API) GetQueue(c *gin.Context) {
	c.JSON(http.StatusOK, a.node.QueueSnapshot())
}

// respondError maps a typed error to its HTTP status and a stable
// JSON shape carrying Kind, so a client can branch on the error
// category without parsing the message text.
func respondError(c *gin.Context, err error) {
	e, ok := errs.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"kind": errs.KindFatal, "error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case errs.KindValidation:
		status = http.StatusBadRequest
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindProtocol:
		status = http.StatusBadRequest
	case errs.KindTransport:
		status = http.StatusBadGateway
	case errs.KindFatal:
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"kind": e.Kind, "error": e.Message})
}
