package services

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/homework-bot/internal/bot"
	"github.com/maxaizer/homework-bot/internal/clients/practicum"
	"github.com/maxaizer/homework-bot/internal/domain/events"
	"github.com/maxaizer/homework-bot/internal/domain/homework"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"strconv"
	"testing"
	"time"
)

type mockApiClient struct {
	mock.Mock
}

func (m *mockApiClient) GetAPIAnswer(ctx context.Context, timestamp int64) (any, error) {
	args := m.Called(ctx, timestamp)
	return args.Get(0), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(text string) error {
	return m.Called(text).Error(0)
}

const startCursor int64 = 1700000000

func newTestPoller(t *testing.T, client apiClient, sender bot.Sender) (*StatusPoller, EventBus.Bus) {
	bus := EventBus.New()
	_, err := bot.NewBot(sender, bus)
	require.NoError(t, err)

	poller, err := NewStatusPoller(bus, client, 10*time.Minute, startCursor)
	require.NoError(t, err)
	return poller, bus
}

func apiAnswer(currentDate int64, homeworks ...any) map[string]any {
	if homeworks == nil {
		homeworks = []any{}
	}
	return map[string]any{
		"homeworks":    homeworks,
		"current_date": json.Number(strconv.FormatInt(currentDate, 10)),
	}
}

func Test_StatusPoller_EmptyList_DoesNotNotify(t *testing.T) {
	client := &mockApiClient{}
	client.On("GetAPIAnswer", mock.Anything, startCursor).Return(apiAnswer(startCursor+600), nil).Once()
	sender := &mockSender{}

	hook := logtest.NewGlobal()
	defer log.StandardLogger().ReplaceHooks(make(log.LevelHooks))

	poller, _ := newTestPoller(t, client, sender)
	poller.runCycle(context.Background())

	client.AssertExpectations(t)
	sender.AssertNotCalled(t, "Send", mock.Anything)
	assert.True(t, hasLogEntry(hook, log.InfoLevel, "no new homework"))
	assert.Equal(t, startCursor, poller.Cursor())
	assert.Equal(t, int64(0), poller.Stats().Failures)
	assert.False(t, poller.Stats().LastSuccessTime.IsZero())
}

func hasLogEntry(hook *logtest.Hook, level log.Level, message string) bool {
	for _, entry := range hook.AllEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

func Test_StatusPoller_StatusChanged_NotifiesOnceAndAdvancesCursor(t *testing.T) {
	const nextCursor = startCursor + 1234

	client := &mockApiClient{}
	client.On("GetAPIAnswer", mock.Anything, startCursor).Return(apiAnswer(nextCursor,
		map[string]any{"homework_name": "x", "status": "rejected"},
		map[string]any{"homework_name": "y", "status": "approved"},
	), nil).Once()

	sender := &mockSender{}
	sender.On("Send", `Изменился статус проверки работы "x". Работа проверена: у ревьюера есть замечания.`).
		Return(nil).Once()

	poller, _ := newTestPoller(t, client, sender)
	poller.runCycle(context.Background())

	sender.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, int64(nextCursor), poller.Cursor())
}

func Test_StatusPoller_NextCycleUsesAdvancedCursor(t *testing.T) {
	const nextCursor = startCursor + 600

	client := &mockApiClient{}
	client.On("GetAPIAnswer", mock.Anything, startCursor).Return(apiAnswer(nextCursor,
		map[string]any{"homework_name": "hw", "status": "reviewing"}), nil).Once()
	client.On("GetAPIAnswer", mock.Anything, int64(nextCursor)).Return(apiAnswer(nextCursor+600), nil).Once()

	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(nil)

	poller, _ := newTestPoller(t, client, sender)
	poller.runCycle(context.Background())
	poller.runCycle(context.Background())

	client.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, int64(nextCursor), poller.Cursor())
}

func Test_StatusPoller_CycleErrors_AreReportedUniformly(t *testing.T) {
	tests := []struct {
		name     string
		answer   any
		err      error
		kind     ErrorKind
		expected string
	}{
		{
			name:     "transport error",
			err:      &practicum.RequestError{StatusCode: 500},
			kind:     KindTransport,
			expected: "Ошибка: Ошибка при запросе к API: 500",
		},
		{
			name:     "missing homeworks",
			answer:   map[string]any{"current_date": json.Number("1")},
			kind:     KindShape,
			expected: `Ошибка: "homeworks": missing key`,
		},
		{
			name:     "invalid json",
			err:      practicum.ErrInvalidJSON,
			kind:     KindShape,
			expected: "Ошибка: invalid JSON in API answer",
		},
		{
			name:     "unknown status",
			answer:   apiAnswer(startCursor+1, map[string]any{"homework_name": "hw", "status": "lost"}),
			kind:     KindUnknownStatus,
			expected: `Ошибка: Неизвестный статус работы: "lost"`,
		},
		{
			name:     "missing current date",
			answer:   map[string]any{"homeworks": []any{map[string]any{"homework_name": "hw", "status": "approved"}}},
			kind:     KindShape,
			expected: `Ошибка: "current_date": missing key`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockApiClient{}
			client.On("GetAPIAnswer", mock.Anything, startCursor).Return(tt.answer, tt.err).Once()

			sender := &mockSender{}
			sender.On("Send", tt.expected).Return(nil).Once()

			poller, bus := newTestPoller(t, client, sender)

			var failures []events.PollFailed
			require.NoError(t, bus.Subscribe(events.PollFailedTopic, func(event events.PollFailed) {
				failures = append(failures, event)
			}))

			poller.runCycle(context.Background())

			sender.AssertExpectations(t)
			require.Len(t, failures, 1)
			assert.Equal(t, string(tt.kind), failures[0].Kind)
			assert.Equal(t, startCursor, poller.Cursor())
			assert.Equal(t, int64(1), poller.Stats().Failures)
		})
	}
}

func Test_StatusPoller_NotifierFailure_DoesNotStopLoop(t *testing.T) {
	client := &mockApiClient{}
	client.On("GetAPIAnswer", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Times(2)

	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(errors.New("telegram is down"))

	poller, _ := newTestPoller(t, client, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	poller.wait = func(_ context.Context, d time.Duration) bool {
		waits = append(waits, d)
		return len(waits) < 2
	}

	poller.Run(ctx)

	client.AssertNumberOfCalls(t, "GetAPIAnswer", 2)
	sender.AssertNumberOfCalls(t, "Send", 2)
	assert.Equal(t, []time.Duration{10 * time.Minute, 10 * time.Minute}, waits)
	assert.Equal(t, int64(2), poller.Stats().Cycles)
}

func Test_StatusPoller_CancelledContext_IsNotReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &mockApiClient{}
	client.On("GetAPIAnswer", mock.Anything, startCursor).Return(nil, &practicum.RequestError{Err: context.Canceled})

	sender := &mockSender{}
	poller, _ := newTestPoller(t, client, sender)

	poller.Run(ctx)

	sender.AssertNotCalled(t, "Send", mock.Anything)
	client.AssertNumberOfCalls(t, "GetAPIAnswer", 1)
}

func Test_Classify(t *testing.T) {
	assert.Equal(t, KindTransport, classify(&practicum.RequestError{StatusCode: 404}).Kind)
	assert.Equal(t, KindShape, classify(homework.ErrMissingKey).Kind)
	assert.Equal(t, KindShape, classify(homework.ErrUnexpectedType).Kind)
	assert.Equal(t, KindUnknownStatus, classify(homework.ErrUnknownStatus).Kind)

	tagged := &CycleError{Kind: KindTransport, Err: errors.New("x")}
	assert.Same(t, tagged, classify(tagged))
}

func Test_NewStatusPoller_Validation(t *testing.T) {
	_, err := NewStatusPoller(nil, &mockApiClient{}, time.Minute, 0)
	assert.Error(t, err)

	_, err = NewStatusPoller(EventBus.New(), nil, time.Minute, 0)
	assert.Error(t, err)

	_, err = NewStatusPoller(EventBus.New(), &mockApiClient{}, 0, 0)
	assert.Error(t, err)
}

func Test_SleepContext(t *testing.T) {
	assert.True(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepContext(ctx, time.Hour))
}
