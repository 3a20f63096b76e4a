package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shravani77747/ASD-Screening/internal/screening"
)

// health reports the loaded model and, when configured, Redis reachability
func (s *Server) health(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	store := "memory"
	checks := gin.H{
		"model":  s.deps.Model,
		"layout": screening.LayoutVersion,
	}

	if s.deps.Redis.IsEnabled() {
		store = "redis"
		if err := s.deps.Redis.HealthCheck(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	c.JSON(code, gin.H{
		"status":        status,
		"timestamp":     s.now().UTC().Format(time.RFC3339),
		"session_store": store,
		"checks":        checks,
	})
}

type statsReporter interface {
	Stats() map[string]interface{}
}

func (s *Server) metrics(c *gin.Context) {
	out := gin.H{
		"metrics":      s.deps.Metrics.GetStats(),
		"rate_limiter": s.deps.Limiter.GetStats(),
		"compression":  s.compression.GetStats(),
	}
	if guarded, ok := s.deps.Store.(statsReporter); ok {
		out["session_store"] = guarded.Stats()
	}
	c.JSON(http.StatusOK, out)
}
