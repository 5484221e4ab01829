package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"causalkv/internal/errs"
)

// Logger logs every incoming request once it completes: method, path,
// client IP, the status the handler settled on, and how long it took.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		log.Printf("http: %s %s from %s -> %d (%s)",
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.Writer.Status(),
			latency,
		)
	}
}

// Recovery catches a panic in a later handler and turns it into the
// same structured error shape every other failure on this node
// produces, instead of letting the panic take the process down — one
// bad request must not cut off replication for every peer depending
// on this node being reachable.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("http: panic recovered: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"kind":  errs.KindFatal,
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
