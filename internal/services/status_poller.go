package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/homework-bot/internal/domain/events"
	"github.com/maxaizer/homework-bot/internal/domain/homework"
	"github.com/maxaizer/homework-bot/internal/logger"
	"github.com/maxaizer/homework-bot/internal/metrics"
	log "github.com/sirupsen/logrus"
	"sync/atomic"
	"time"
)

type apiClient interface {
	GetAPIAnswer(ctx context.Context, timestamp int64) (any, error)
}

type PollerStats struct {
	Cursor          int64
	Cycles          int64
	Failures        int64
	LastSuccessTime time.Time
}

// StatusPoller asks the API for homework status changes once per retry
// period and publishes what it finds on the bus.
type StatusPoller struct {
	bus         EventBus.Bus
	client      apiClient
	retryPeriod time.Duration

	cursor      atomic.Int64
	cycles      atomic.Int64
	failures    atomic.Int64
	lastSuccess atomic.Int64

	wait func(ctx context.Context, d time.Duration) bool
}

func NewStatusPoller(bus EventBus.Bus, client apiClient, retryPeriod time.Duration, cursor int64) (*StatusPoller, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if client == nil {
		return nil, errors.New("api client is nil")
	}
	if retryPeriod <= 0 {
		return nil, errors.New("retry period must be greater than zero")
	}

	p := &StatusPoller{
		bus:         bus,
		client:      client,
		retryPeriod: retryPeriod,
		wait:        sleepContext,
	}
	p.setCursor(cursor)
	return p, nil
}

// Run polls until ctx is cancelled. The retry period is waited after every
// cycle, successful or not.
func (p *StatusPoller) Run(ctx context.Context) {
	log.Infof("polling homework statuses every %v starting from %d", p.retryPeriod, p.Cursor())

	for {
		p.runCycle(ctx)

		log.Debugf("next poll at %v", time.Now().Add(p.retryPeriod))
		if !p.wait(ctx, p.retryPeriod) {
			log.Info("status poller stopped")
			return
		}
	}
}

func (p *StatusPoller) Cursor() int64 {
	return p.cursor.Load()
}

func (p *StatusPoller) Stats() PollerStats {
	stats := PollerStats{
		Cursor:   p.cursor.Load(),
		Cycles:   p.cycles.Load(),
		Failures: p.failures.Load(),
	}
	if ts := p.lastSuccess.Load(); ts != 0 {
		stats.LastSuccessTime = time.Unix(ts, 0)
	}
	return stats
}

func (p *StatusPoller) runCycle(ctx context.Context) {
	start := time.Now()
	p.cycles.Add(1)

	found, err := p.poll(ctx)
	metrics.PollDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		p.lastSuccess.Store(time.Now().Unix())
		if found {
			metrics.PollsCounter.WithLabelValues("changed").Inc()
		} else {
			metrics.PollsCounter.WithLabelValues("empty").Inc()
		}
		return
	}

	if ctx.Err() != nil {
		log.Debugf("poll interrupted: %v", err)
		return
	}

	p.failures.Add(1)
	metrics.PollsCounter.WithLabelValues("failed").Inc()
	p.report(classify(err))
}

func (p *StatusPoller) poll(ctx context.Context) (bool, error) {
	response, err := p.client.GetAPIAnswer(ctx, p.Cursor())
	if err != nil {
		return false, err
	}

	homeworks, err := homework.CheckResponse(response)
	if err != nil {
		return false, err
	}
	log.Infof("homework list received, %d item(s)", len(homeworks))

	if len(homeworks) == 0 {
		log.Info("no new homework")
		return false, nil
	}

	// only the most recent homework is reported; the cursor still moves past the rest
	message, err := homework.ParseStatus(homeworks[0])
	if err != nil {
		return false, err
	}

	next, err := homework.CurrentDate(response)
	if err != nil {
		return false, err
	}

	p.bus.Publish(events.StatusChangedTopic, events.StatusChanged{Message: message, Cursor: next})
	p.setCursor(next)
	return true, nil
}

func (p *StatusPoller) report(err *CycleError) {
	log.WithField(logger.ErrorTypeField, err.logType()).Errorf("poll failed (%s): %v", err.Kind, err)
	p.bus.Publish(events.PollFailedTopic, events.PollFailed{
		Kind:    string(err.Kind),
		Message: fmt.Sprintf("Ошибка: %v", err),
	})
}

func (p *StatusPoller) setCursor(cursor int64) {
	p.cursor.Store(cursor)
	metrics.CursorTimestamp.Set(float64(cursor))
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
