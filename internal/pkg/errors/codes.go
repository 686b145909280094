package errors

import "net/http"

const (
	CodeInvalidInput = "INVALID_INPUT"
)

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidQueryParameters = New(
		"INVALID_QUERY_PARAMETERS",
		"Invalid tilequery parameters",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		CodeInvalidInput,
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrPermissionDenied = New(
		"PERMISSION_DENIED",
		"Location permission is not granted",
		http.StatusConflict,
	)

	ErrJournalDisabled = New(
		"JOURNAL_DISABLED",
		"Query journal is not configured",
		http.StatusNotFound,
	)

	ErrServiceUnavailable = New(
		"SERVICE_UNAVAILABLE",
		"Service is shutting down",
		http.StatusServiceUnavailable,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
