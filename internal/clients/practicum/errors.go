package practicum

import (
	"errors"
	"fmt"
)

var ErrInvalidJSON = errors.New("invalid JSON in API answer")

// RequestError is returned when the API could not be reached or answered with
// a status other than 200. StatusCode is zero if no response was received.
type RequestError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("Ошибка при запросе к API: нет ответа (%v)", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("Ошибка при запросе к API: %d (%v)", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("Ошибка при запросе к API: %d", e.StatusCode)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
