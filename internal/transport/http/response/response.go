package response

import "github.com/gin-gonic/gin"

const (
	CodeOK             = 0
	CodeBadRequest     = 40000
	CodeImageDecode    = 40001
	CodeUnknownLabel   = 40002
	CodeImageTooLarge  = 40003
	CodeNotFound       = 40400
	CodeNoImage        = 40401
	CodeNoPrediction   = 40901
	CodeInternalServer = 50000
	CodeInference      = 50001
	CodeSessionStore   = 50002
	CodeUnavailable    = 50300
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
