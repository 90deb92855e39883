package errs

import (
	"errors"
	"fmt"
)

// Code 标识错误类别，HTTP 与 MCP 层据此映射状态码。
type Code string

const (
	CodeConfig         Code = "CONFIG_INVALID"   // 400
	CodeTemplate       Code = "TEMPLATE_INVALID" // 400
	CodeInvalidRequest Code = "INVALID_REQUEST"  // 400
	CodeUnauthorized   Code = "UNAUTHORIZED"     // 401
	CodeNotFound       Code = "NOT_FOUND"        // 404
	CodeTooLarge       Code = "TOO_LARGE"        // 413
	CodeCanceled       Code = "CANCELED"         // 499
	CodeInternal       Code = "INTERNAL"         // 500
)

// Error 是带错误码、状态与细节的结构化错误。
type Error struct {
	Code    Code
	Status  int
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewConfig 表示配置非法，转换开始前即失败。
func NewConfig(field, msg string) *Error {
	return &Error{
		Code:    CodeConfig,
		Status:  400,
		Message: fmt.Sprintf("%s: %s", field, msg),
		Details: map[string]any{"field": field},
	}
}

// NewTemplate 表示模板描述无法加载或校验失败。
func NewTemplate(msg string, err error) *Error {
	return &Error{
		Code:    CodeTemplate,
		Status:  400,
		Message: msg,
		Err:     err,
	}
}

func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    CodeInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

func NewUnauthorized(msg string) *Error {
	return &Error{
		Code:    CodeUnauthorized,
		Status:  401,
		Message: msg,
	}
}

// NewNotFound 表示制品或资源不存在。
func NewNotFound(what, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", what, id),
		Details: map[string]any{"id": id},
	}
}

func NewTooLarge(limit int64) *Error {
	return &Error{
		Code:    CodeTooLarge,
		Status:  413,
		Message: fmt.Sprintf("request body exceeds %d bytes", limit),
		Details: map[string]any{"limit": limit},
	}
}

// NewCanceled 包装 context 取消或超时。
func NewCanceled(err error) *Error {
	return &Error{
		Code:    CodeCanceled,
		Status:  499,
		Message: "conversion canceled",
		Err:     err,
	}
}

func NewInternal(msg string, err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is 判断错误链中是否存在指定错误码。
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// StatusOf 返回错误链中的 HTTP 状态，非结构化错误按 500 处理。
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status > 0 {
		return e.Status
	}
	return 500
}
