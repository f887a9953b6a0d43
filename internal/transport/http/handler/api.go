package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"photolabel/internal/app"
	"photolabel/internal/transport/http/middleware"
	"photolabel/internal/transport/http/response"
	"photolabel/internal/video"
)

// APIHandler exposes the page operations as JSON.
type APIHandler struct {
	presentation *app.Presentation
	maxUpload    int64
	logger       *slog.Logger
}

type selectionRequest struct {
	Label string `json:"label" binding:"required"`
}

type catalogEntry struct {
	Label  string       `json:"label"`
	Texts  []string     `json:"texts"`
	Images []string     `json:"images"`
	Videos []video.Link `json:"videos"`
	Empty  bool         `json:"empty"`
}

func NewAPIHandler(presentation *app.Presentation, maxUpload int64, logger *slog.Logger) *APIHandler {
	return &APIHandler{presentation: presentation, maxUpload: maxUpload, logger: logger}
}

func (h *APIHandler) View(c *gin.Context) {
	view, err := h.presentation.View(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, view)
}

// Predict accepts a multipart form with "image" and optional "source".
func (h *APIHandler) Predict(c *gin.Context) {
	data, err := readUpload(c, h.maxUpload)
	if err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.presentation.Submit(c.Request.Context(), app.SubmitInput{
		SessionID: middleware.SessionID(c),
		Image:     data,
		Source:    c.PostForm("source"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, view)
}

func (h *APIHandler) Selection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "label is required")
		return
	}
	view, err := h.presentation.Select(c.Request.Context(), middleware.SessionID(c), req.Label)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, view)
}

func (h *APIHandler) Labels(c *gin.Context) {
	response.OK(c, gin.H{"labels": h.presentation.Labels()})
}

func (h *APIHandler) Catalog(c *gin.Context) {
	label := strings.TrimSpace(c.Param("label"))
	b := h.presentation.Lookup(label)
	response.OK(c, catalogEntry{
		Label:  label,
		Texts:  b.Texts,
		Images: b.Images,
		Videos: video.ResolveAll(b.Videos),
		Empty:  b.Empty(),
	})
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	if toAPIError(err).status >= http.StatusInternalServerError {
		h.logger.Error("api request failed", "path", c.FullPath(), "error", err)
	}
	writeError(c, err)
}
