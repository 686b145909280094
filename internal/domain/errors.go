package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPoint           = errors.New("invalid point: latitude must be within [-90,90] and longitude within [-180,180]")
	ErrInvalidQueryParameters = errors.New("invalid query parameters")
	ErrPermissionDenied       = errors.New("location permission not granted")
	ErrStaleResponse          = errors.New("stale response discarded")
	ErrControllerStopped      = errors.New("overlay controller stopped")

	// Категории ошибок Tilequery, доступные через errors.Is
	ErrNetwork = errors.New("network error")
	ErrService = errors.New("service error")
	ErrDecode  = errors.New("decode error")
)

// QueryErrorKind - категория ошибки запроса к пространственному индексу
type QueryErrorKind int

const (
	KindNetwork QueryErrorKind = iota + 1
	KindService
	KindDecode
)

func (k QueryErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindService:
		return "service"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// QueryError - типизированная ошибка SpatialQueryClient
type QueryError struct {
	Kind       QueryErrorKind
	StatusCode int    // только для KindService
	Body       string // фрагмент тела ответа для KindService
	Err        error
}

func (e *QueryError) Error() string {
	switch e.Kind {
	case KindService:
		if e.Body != "" {
			return fmt.Sprintf("tilequery service error: status %d, body: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("tilequery service error: status %d", e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("tilequery %s error: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("tilequery %s error", e.Kind)
	}
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с ErrNetwork / ErrService / ErrDecode
func (e *QueryError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrService:
		return e.Kind == KindService
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

func NewNetworkError(err error) *QueryError {
	return &QueryError{Kind: KindNetwork, Err: err}
}

func NewServiceError(statusCode int, body string) *QueryError {
	return &QueryError{Kind: KindService, StatusCode: statusCode, Body: body}
}

func NewDecodeError(err error) *QueryError {
	return &QueryError{Kind: KindDecode, Err: err}
}

// ErrorKindOf возвращает категорию ошибки для меток метрик и журнала
func ErrorKindOf(err error) string {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind.String()
	}
	return "unknown"
}

// StatusCodeOf возвращает HTTP статус удалённого сервиса, если он известен
func StatusCodeOf(err error) int {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.StatusCode
	}
	return 0
}
