package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeEmailExists        = 40002
	CodeValidation         = 40003
	CodeExtractionFailed   = 40004
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeForbidden          = 40300
	CodeNotFound           = 40400
	CodeDocumentNotFound   = 40402
	CodeInternalServer     = 50000
	CodeServerConfig       = 50001
	CodePersistFailed      = 50002
	CodeEnqueueFailed      = 50003
	CodeProfileNotFound    = 50004
	CodeUpstream           = 50200
)

// APIResponse is the envelope of every JSON endpoint. Error repeats Message on
// failures so clients can branch on success and read error directly.
type APIResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Success: true,
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Success: false,
		Code:    code,
		Message: message,
		Error:   message,
	})
}

// Abort writes an error and stops the handler chain.
func Abort(c *gin.Context, httpStatus, code int, message string) {
	Error(c, httpStatus, code, message)
	c.Abort()
}
