package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind clasifica el origen de un fallo al hablar con la API GraphQL
type Kind int

const (
	// KindTransport: conexión rechazada, timeout, DNS, breaker abierto
	KindTransport Kind = iota + 1
	// KindProtocol: la API respondió con un status distinto de 200
	KindProtocol
	// KindPayload: el cuerpo no tiene la forma esperada
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// JobError representa un fallo tipado que la capa de jobs convierte en línea de log
type JobError struct {
	Kind       Kind                   `json:"kind"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	StatusCode int                    `json:"status_code,omitempty"`
	Body       string                 `json:"body,omitempty"`
	Internal   error                  `json:"-"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Retryable  bool                   `json:"retryable"`
}

func (e *JobError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", msg, e.Internal)
	}
	return msg
}

func (e *JobError) Unwrap() error {
	return e.Internal
}

// NewJobError crea un nuevo error tipado
func NewJobError(kind Kind, message string, internal error) *JobError {
	return &JobError{
		Kind:     kind,
		Message:  message,
		Internal: internal,
		Metadata: make(map[string]interface{}),
	}
}

// WithDetails agrega detalles adicionales al error
func (e *JobError) WithDetails(details string) *JobError {
	e.Details = details
	return e
}

// WithMetadata agrega metadata al error
func (e *JobError) WithMetadata(key string, value interface{}) *JobError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithRetryable marca el error como reintentable
func (e *JobError) WithRetryable(retryable bool) *JobError {
	e.Retryable = retryable
	return e
}

var (
	ErrTransport = func(details string, err error) *JobError {
		return NewJobError(KindTransport, "transport error", err).
			WithDetails(details).
			WithRetryable(true)
	}

	// El mensaje conserva el formato "<status> <body>" que se escribe en los logs
	ErrProtocol = func(statusCode int, body string) *JobError {
		e := NewJobError(KindProtocol, fmt.Sprintf("%d %s", statusCode, body), nil).
			WithRetryable(statusCode >= http.StatusInternalServerError)
		e.StatusCode = statusCode
		e.Body = body
		return e
	}

	ErrPayload = func(details string, err error) *JobError {
		return NewJobError(KindPayload, "invalid payload", err).
			WithDetails(details).
			WithRetryable(false)
	}
)

// KindOf devuelve la clase del error, o 0 si no es un *JobError
func KindOf(err error) Kind {
	var jobErr *JobError
	if stderrors.As(err, &jobErr) {
		return jobErr.Kind
	}
	return 0
}

// IsRetryable verifica si un error es reintentable
func IsRetryable(err error) bool {
	var jobErr *JobError
	if stderrors.As(err, &jobErr) {
		return jobErr.Retryable
	}
	return false
}

// GetStatusCode obtiene el código HTTP devuelto por la API, 0 si no hubo respuesta
func GetStatusCode(err error) int {
	var jobErr *JobError
	if stderrors.As(err, &jobErr) {
		return jobErr.StatusCode
	}
	return 0
}
