package bot

import (
	"errors"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/homework-bot/internal/domain/events"
	"github.com/maxaizer/homework-bot/internal/logger"
	"github.com/maxaizer/homework-bot/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Sender delivers a plain text message to the chat it was created for.
type Sender interface {
	Send(text string) error
}

// Bot is the only way the application talks to the student. Delivery
// failures stay inside the bot.
type Bot struct {
	sender Sender
	bus    EventBus.Bus
}

func NewBot(sender Sender, bus EventBus.Bus) (*Bot, error) {

	if sender == nil {
		return nil, errors.New("sender is nil")
	}

	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	createdBot := &Bot{sender: sender, bus: bus}

	if err := bus.Subscribe(events.StatusChangedTopic, createdBot.onStatusChanged); err != nil {
		return nil, err
	}

	if err := bus.Subscribe(events.PollFailedTopic, createdBot.onPollFailed); err != nil {
		return nil, err
	}

	return createdBot, nil
}

func (b *Bot) SendMessage(text string) {
	if err := b.sender.Send(text); err != nil {
		metrics.NotificationsCounter.WithLabelValues("failed").Inc()
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("failed to send message: %v", err)
		return
	}
	metrics.NotificationsCounter.WithLabelValues("sent").Inc()
	log.Debugf("message sent: %s", text)
}

func (b *Bot) onStatusChanged(event events.StatusChanged) {
	b.SendMessage(event.Message)
}

func (b *Bot) onPollFailed(event events.PollFailed) {
	b.SendMessage(event.Message)
}

// Stop detaches the bot from the bus.
func (b *Bot) Stop() {
	_ = b.bus.Unsubscribe(events.StatusChangedTopic, b.onStatusChanged)
	_ = b.bus.Unsubscribe(events.PollFailedTopic, b.onPollFailed)
}
