package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"photolabel/internal/app"
	"photolabel/internal/transport/http/response"
	"photolabel/internal/vision"
)

var (
	errMissingImage  = errors.New("missing image file (form field 'image')")
	errImageTooLarge = errors.New("image too large")
)

type apiError struct {
	status  int
	code    int
	message string
}

func toAPIError(err error) apiError {
	switch {
	case errors.Is(err, errMissingImage):
		return apiError{http.StatusBadRequest, response.CodeBadRequest, err.Error()}
	case errors.Is(err, errImageTooLarge):
		return apiError{http.StatusRequestEntityTooLarge, response.CodeImageTooLarge, err.Error()}
	case errors.Is(err, vision.ErrDecode):
		return apiError{http.StatusBadRequest, response.CodeImageDecode, "the file could not be read as an image"}
	case errors.Is(err, vision.ErrInference):
		return apiError{http.StatusInternalServerError, response.CodeInference, "prediction failed, please try another image"}
	case errors.Is(err, vision.ErrModelUnavailable):
		return apiError{http.StatusServiceUnavailable, response.CodeUnavailable, "classifier is unavailable"}
	case errors.Is(err, app.ErrNoPrediction):
		return apiError{http.StatusConflict, response.CodeNoPrediction, "submit an image before choosing a label"}
	case errors.Is(err, app.ErrUnknownLabel):
		return apiError{http.StatusBadRequest, response.CodeUnknownLabel, err.Error()}
	case errors.Is(err, app.ErrNoImage):
		return apiError{http.StatusNotFound, response.CodeNoImage, err.Error()}
	case errors.Is(err, app.ErrSessionStore):
		return apiError{http.StatusInternalServerError, response.CodeSessionStore, "session storage is unavailable"}
	default:
		return apiError{http.StatusInternalServerError, response.CodeInternalServer, "internal server error"}
	}
}

// NotFound answers unknown routes with the JSON envelope.
func NotFound(c *gin.Context) {
	response.Error(c, http.StatusNotFound, response.CodeNotFound, "route not found")
}

func writeError(c *gin.Context, err error) {
	e := toAPIError(err)
	response.Error(c, e.status, e.code, e.message)
}

// readUpload reads the "image" form file, capped at limit bytes.
func readUpload(c *gin.Context, limit int64) ([]byte, error) {
	// Multipart framing and the other fields ride on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+64<<10)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errImageTooLarge
		}
		return nil, errMissingImage
	}
	if file.Size > limit {
		return nil, errImageTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return nil, errMissingImage
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errMissingImage
	}
	return data, nil
}
