package errno

import (
	"fmt"
	"strings"
)

// BizError 业务错误接口：携带错误码、格式化后的消息和底层原因。
type BizError interface {
	error
	Errno() *Errno
	Message() string
	Unwrap() error
}

type simpleBizError struct {
	errno *Errno
	cause error
	args  []interface{}
}

// NewSimpleBizError wraps an Errno with a concrete cause. args fill the
// Errno message's format verbs when present.
func NewSimpleBizError(e *Errno, cause error, args ...interface{}) BizError {
	return &simpleBizError{errno: e, cause: cause, args: args}
}

func (e *simpleBizError) Errno() *Errno {
	return e.errno
}

func (e *simpleBizError) Message() string {
	if len(e.args) > 0 && strings.Contains(e.errno.Message, "%") {
		return fmt.Sprintf(e.errno.Message, e.args...)
	}
	return e.errno.Message
}

func (e *simpleBizError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message(), e.cause)
	}
	return e.Message()
}

func (e *simpleBizError) Unwrap() error {
	return e.cause
}
