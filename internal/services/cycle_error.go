package services

import (
	"errors"
	"github.com/maxaizer/homework-bot/internal/clients/practicum"
	"github.com/maxaizer/homework-bot/internal/domain/homework"
	"github.com/maxaizer/homework-bot/internal/logger"
)

type ErrorKind string

const (
	KindTransport     ErrorKind = "transport"
	KindShape         ErrorKind = "shape"
	KindUnknownStatus ErrorKind = "unknown_status"
)

// CycleError is any failure of a single poll cycle. All kinds are reported
// to the chat the same way; the kind only feeds logs and metrics.
type CycleError struct {
	Kind ErrorKind
	Err  error
}

func (e *CycleError) Error() string {
	return e.Err.Error()
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

func (e *CycleError) logType() string {
	switch e.Kind {
	case KindTransport:
		return logger.ErrorTypePracticumApi
	case KindUnknownStatus:
		return logger.ErrorTypeStatus
	default:
		return logger.ErrorTypeResponse
	}
}

func classify(err error) *CycleError {
	var cycleErr *CycleError
	if errors.As(err, &cycleErr) {
		return cycleErr
	}

	var requestErr *practicum.RequestError
	switch {
	case errors.As(err, &requestErr):
		return &CycleError{Kind: KindTransport, Err: err}
	case errors.Is(err, homework.ErrUnknownStatus):
		return &CycleError{Kind: KindUnknownStatus, Err: err}
	default:
		return &CycleError{Kind: KindShape, Err: err}
	}
}
