package homework

import "github.com/pkg/errors"

var (
	ErrMissingKey     = errors.New("missing key")
	ErrUnexpectedType = errors.New("unexpected type")
	ErrUnknownStatus  = errors.New("Неизвестный статус работы")
)

func missingKey(key string) error {
	return errors.Wrapf(ErrMissingKey, "%q", key)
}

func unexpectedType(what string, value any) error {
	return errors.Wrapf(ErrUnexpectedType, "%s is %T", what, value)
}
