// Package httpapi is the client-facing and peer-facing HTTP façade for
// a node. It is a thin JSON codec over internal/replication.Controller
// — no replication logic lives here.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"causalkv/internal/replication"
)

// API wires a Controller to gin routes.
type API struct {
	node     *replication.Controller
	registry *prometheus.Registry
}

// New builds an API façade over node, exposing metrics registered in
// registry at GET /metrics.
func New(node *replication.Controller, registry *prometheus.Registry) *API {
	return &API{node: node, registry: registry}
}

// SetupRoutes registers the node's client-facing and peer-facing
// routes, plus the ambient GET /metrics endpoint.
func (a *API) SetupRoutes(r *gin.Engine) {
	r.Use(Logger(), Recovery())

	r.GET("/health", a.Health)

	r.POST("/alumnos", a.CreateRecord)
	r.PUT("/alumnos/:key", a.UpdateRecord)
	r.GET("/alumnos", a.ListRecords)
	r.GET("/alumnos/:key", a.GetRecord)

	r.POST("/replicate", a.Replicate)

	r.GET("/log", a.GetLog)
	r.GET("/queue", a.GetQueue)

	if a.registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}
}
