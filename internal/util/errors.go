package util

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation         ErrorKind = "ValidationError"
	KindInvalidFormat      ErrorKind = "InvalidFormat"
	KindWeakInput          ErrorKind = "WeakInput"
	KindDuplicateEmail     ErrorKind = "DuplicateEmail"
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindEmptyQuestionSet   ErrorKind = "EmptyQuestionSet"
	KindStorageUnavailable ErrorKind = "StorageUnavailable"
	KindNotFound           ErrorKind = "NotFound"
	KindNoActiveSession    ErrorKind = "NoActiveSession"
	KindRequestCanceled    ErrorKind = "RequestCanceled"
)

// AppError 带分类的业务错误，Message 可直接展示给用户
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func ValidationError(message string) *AppError {
	return NewAppError(KindValidation, message)
}

func InvalidFormat(message string) *AppError {
	return NewAppError(KindInvalidFormat, message)
}

func WeakInput(message string) *AppError {
	return NewAppError(KindWeakInput, message)
}

func NotFoundError(message string) *AppError {
	return NewAppError(KindNotFound, message)
}

// StorageUnavailable 包装持久层的底层错误
func StorageUnavailable(err error) *AppError {
	return &AppError{Kind: KindStorageUnavailable, Message: "storage unavailable", Err: err}
}

// RequestCanceled 客户端断开或请求超时，保留 ctx 的原始错误
func RequestCanceled(err error) *AppError {
	return &AppError{Kind: KindRequestCanceled, Message: "Request canceled", Err: err}
}

// KindOf 返回错误分类，非 AppError 返回空串
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind 判断错误链中是否包含指定分类
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrDuplicateEmail  = NewAppError(KindDuplicateEmail, "User with this email already exists")
	ErrInvalidLogin    = NewAppError(KindInvalidCredentials, "Invalid email or password")
	ErrEmptyQuestions  = NewAppError(KindEmptyQuestionSet, "Assessment has no questions")
	ErrNoActiveSession = NewAppError(KindNoActiveSession, "No assessment in progress")
	ErrTodoNotFound    = NotFoundError("Todo not found")
	ErrResultNotFound  = NotFoundError("Result not found")
	ErrUserNotFound    = NotFoundError("User not found")
)
