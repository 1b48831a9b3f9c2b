package services

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type statsSource interface {
	Stats() PollerStats
}

// Heartbeat periodically logs that the poller is alive.
type Heartbeat struct {
	source statsSource
	cron   *cron.Cron
}

func NewHeartbeat(source statsSource, schedule string) (*Heartbeat, error) {

	if source == nil {
		return nil, errors.New("stats source is nil")
	}

	h := &Heartbeat{
		source: source,
		cron:   cron.New(),
	}

	if _, err := h.cron.AddFunc(schedule, h.beat); err != nil {
		return nil, errors.Wrapf(err, "invalid heartbeat schedule %q", schedule)
	}

	h.cron.Start()
	log.Infof("heartbeat started, schedule: %s", schedule)
	return h, nil
}

func (h *Heartbeat) Stop() {
	<-h.cron.Stop().Done()
}

func (h *Heartbeat) beat() {
	log.Info(heartbeatMessage(h.source.Stats()))
}

func heartbeatMessage(stats PollerStats) string {
	lastSuccess := "never"
	if !stats.LastSuccessTime.IsZero() {
		lastSuccess = stats.LastSuccessTime.Format(time.RFC3339)
	}
	return fmt.Sprintf("bot is alive: cursor %d, %d poll(s), %d failed, last successful poll: %s",
		stats.Cursor, stats.Cycles, stats.Failures, lastSuccess)
}
