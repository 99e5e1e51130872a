package commonModels

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "Validation"
	KindAuth       ErrorKind = "Auth"
	KindNotFound   ErrorKind = "NotFound"
	KindUpstream   ErrorKind = "Upstream"
	KindStorage    ErrorKind = "Storage"
	KindInternal   ErrorKind = "Internal"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrKeyNotFound      = errors.New("api key not found")
	ErrOTPNotFound      = errors.New("otp not found or expired")
	ErrJobNotFound      = errors.New("job not found")
)

// AppError carries the user facing message separately from the wrapped cause,
// the message is what ends up in the {success:false, message} envelope.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationError(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func AuthError(message string) error {
	return &AppError{Kind: KindAuth, Message: message}
}

func NotFoundError(message string, err error) error {
	return &AppError{Kind: KindNotFound, Message: message, Err: err}
}

func UpstreamError(message string, err error) error {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

func StorageError(message string, err error) error {
	return &AppError{Kind: KindStorage, Message: message, Err: err}
}

func InternalError(message string, err error) error {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage is safe to return to callers. Unknown errors never leak their text.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Internal server error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
