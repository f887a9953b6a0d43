package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ModelStatus interface {
	Loaded() bool
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	name      string
	env       string
	startedAt time.Time
	model     ModelStatus
	sessions  Pinger
	catalog   Pinger
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// NewHealthHandler reports on the classifier and the session store. catalog may be nil
// when content is served from a file.
func NewHealthHandler(name, env string, startedAt time.Time, model ModelStatus, sessions, catalog Pinger) *HealthHandler {
	return &HealthHandler{
		name:      name,
		env:       env,
		startedAt: startedAt,
		model:     model,
		sessions:  sessions,
		catalog:   catalog,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	modelStatus := h.checkModel()
	sessionStatus := checkPing(ctx, h.sessions)
	deps := gin.H{
		"model":         modelStatus,
		"session_store": sessionStatus,
	}
	allOK := modelStatus.OK && sessionStatus.OK
	if h.catalog != nil {
		status := checkPing(ctx, h.catalog)
		deps["catalog_db"] = status
		allOK = allOK && status.OK
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":          h.name,
		"env":          h.env,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"dependencies": deps,
	})
}

func (h *HealthHandler) checkModel() dependencyStatus {
	if !h.model.Loaded() {
		return dependencyStatus{OK: false, Message: "model not loaded"}
	}
	return dependencyStatus{OK: true}
}

func checkPing(ctx context.Context, p Pinger) dependencyStatus {
	if err := p.Ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
