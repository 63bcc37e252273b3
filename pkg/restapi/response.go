package restapi

import (
	"errors"
	"net/http"

	"notification-dispatch/pkg/errno"

	"github.com/gin-gonic/gin"
)

// Response 统一响应包装。
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes the standard success envelope.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed writes an error envelope, resolving business error codes.
func Failed(ctx *gin.Context, err error) {
	FailedWithStatus(ctx, err, http.StatusOK)
}

// FailedWithStatus is Failed with an explicit HTTP status code.
func FailedWithStatus(ctx *gin.Context, err error, status int) {
	code, message := resolve(err)
	ctx.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

func resolve(err error) (int, string) {
	var bizErr errno.BizError
	if errors.As(err, &bizErr) {
		return bizErr.Errno().Code, bizErr.Message()
	}
	var e *errno.Errno
	if errors.As(err, &e) {
		return e.Code, e.Message
	}
	return errno.ErrInternalServer.Code, errno.ErrInternalServer.Message
}
