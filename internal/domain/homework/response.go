package homework

import (
	"encoding/json"
	"github.com/pkg/errors"
)

const (
	homeworksKey   = "homeworks"
	currentDateKey = "current_date"
)

// CheckResponse validates the shape of an API answer and returns its
// homework list as is, possibly empty.
func CheckResponse(response any) ([]any, error) {
	answer, ok := response.(map[string]any)
	if !ok {
		return nil, unexpectedType("response", response)
	}

	raw, ok := answer[homeworksKey]
	if !ok {
		return nil, missingKey(homeworksKey)
	}

	homeworks, ok := raw.([]any)
	if !ok {
		return nil, unexpectedType(homeworksKey, raw)
	}

	return homeworks, nil
}

// CurrentDate returns the cursor the API suggests for the next request.
func CurrentDate(response any) (int64, error) {
	answer, ok := response.(map[string]any)
	if !ok {
		return 0, unexpectedType("response", response)
	}

	raw, ok := answer[currentDateKey]
	if !ok {
		return 0, missingKey(currentDateKey)
	}

	switch value := raw.(type) {
	case json.Number:
		timestamp, err := value.Int64()
		if err != nil {
			return 0, errors.Wrapf(ErrUnexpectedType, "%s is %q", currentDateKey, value.String())
		}
		return timestamp, nil
	case int64:
		return value, nil
	case int:
		return int64(value), nil
	case float64:
		if value != float64(int64(value)) {
			return 0, errors.Wrapf(ErrUnexpectedType, "%s is %v", currentDateKey, value)
		}
		return int64(value), nil
	default:
		return 0, unexpectedType(currentDateKey, raw)
	}
}
