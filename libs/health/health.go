package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Manager struct {
	ready  atomic.Bool
	checks []Check
}

func NewManager(initialReady bool, checks ...Check) *Manager {
	m := &Manager{checks: checks}
	m.ready.Store(initialReady)
	return m
}

func (m *Manager) SetReady(ready bool) {
	m.ready.Store(ready)
}

// IsReady is false while the manager is marked not ready or any check fails.
func (m *Manager) IsReady(ctx context.Context) bool {
	if !m.ready.Load() {
		return false
	}
	for _, check := range m.checks {
		if err := check(ctx); err != nil {
			return false
		}
	}
	return true
}

func LivenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func ReadinessHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if m.IsReady(ctx) {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
	}
}
