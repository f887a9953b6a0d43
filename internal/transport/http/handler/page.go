package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"photolabel/internal/app"
	"photolabel/internal/transport/http/middleware"
	"photolabel/web"
)

// PageHandler serves the HTML page and its form posts.
type PageHandler struct {
	presentation *app.Presentation
	title        string
	maxUpload    int64
	logger       *slog.Logger
}

type pageData struct {
	Title string
	Error string
	View  *app.View
}

func NewPageHandler(presentation *app.Presentation, title string, maxUpload int64, logger *slog.Logger) *PageHandler {
	return &PageHandler{presentation: presentation, title: title, maxUpload: maxUpload, logger: logger}
}

func (h *PageHandler) Index(c *gin.Context) {
	view, err := h.presentation.View(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, web.IndexTemplate, pageData{Title: h.title, View: view})
}

// Submit classifies the posted image, then redirects back to the page.
func (h *PageHandler) Submit(c *gin.Context) {
	data, err := readUpload(c, h.maxUpload)
	if err != nil {
		h.renderError(c, err)
		return
	}
	_, err = h.presentation.Submit(c.Request.Context(), app.SubmitInput{
		SessionID: middleware.SessionID(c),
		Image:     data,
		Source:    c.PostForm("source"),
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) Select(c *gin.Context) {
	_, err := h.presentation.Select(c.Request.Context(), middleware.SessionID(c), c.PostForm("label"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Image serves the session's photo, upright and re-encoded as JPEG.
func (h *PageHandler) Image(c *gin.Context) {
	data, err := h.presentation.Preview(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		c.Status(toAPIError(err).status)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/jpeg", data)
}

// renderError shows the page with an inline notice. The previous result stays visible
// because failed operations never touch the session.
func (h *PageHandler) renderError(c *gin.Context, cause error) {
	e := toAPIError(cause)
	if e.status >= http.StatusInternalServerError {
		h.logger.Error("page request failed", "path", c.FullPath(), "error", cause)
	}

	data := pageData{Title: h.title, Error: e.message}
	if view, err := h.presentation.View(c.Request.Context(), middleware.SessionID(c)); err == nil {
		data.View = view
	}
	c.HTML(e.status, web.IndexTemplate, data)
}
