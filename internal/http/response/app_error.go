package response

import "fmt"

// AppError 业务错误载体，携带对外响应码与展示消息
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap 暴露底层错误供 errors.Is/As 匹配
func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装底层错误并附上响应码
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
