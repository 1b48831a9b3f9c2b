package events

var (
	StatusChangedTopic = "HomeworkStatusChangedEvent"
	PollFailedTopic    = "PollFailedEvent"
)

type StatusChanged struct {
	Message string
	Cursor  int64
}

type PollFailed struct {
	Kind    string
	Message string
}
