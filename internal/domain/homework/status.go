package homework

import (
	"fmt"
)

type Status string

const (
	Approved  Status = "approved"
	Reviewing Status = "reviewing"
	Rejected  Status = "rejected"
)

const (
	nameKey   = "homework_name"
	statusKey = "status"
)

var verdicts = map[Status]string{
	Approved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	Reviewing: "Работа взята на проверку ревьюером.",
	Rejected:  "Работа проверена: у ревьюера есть замечания.",
}

func (s Status) Verdict() (string, bool) {
	verdict, ok := verdicts[s]
	return verdict, ok
}

// ParseStatus turns a single homework record from the API answer into the
// message sent to the student.
func ParseStatus(homework any) (string, error) {
	record, ok := homework.(map[string]any)
	if !ok {
		return "", missingKey(statusKey)
	}

	rawStatus, ok := record[statusKey]
	if !ok {
		return "", missingKey(statusKey)
	}

	name, ok := record[nameKey]
	if !ok {
		return "", missingKey(nameKey)
	}

	status, ok := rawStatus.(string)
	if !ok {
		return "", unexpectedType(statusKey, rawStatus)
	}

	verdict, ok := Status(status).Verdict()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	return fmt.Sprintf("Изменился статус проверки работы \"%v\". %s", name, verdict), nil
}
