package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/homework-bot/internal/bot"
	"github.com/maxaizer/homework-bot/internal/clients/practicum"
	"github.com/maxaizer/homework-bot/internal/config"
	"github.com/maxaizer/homework-bot/internal/logger"
	"github.com/maxaizer/homework-bot/internal/metrics"
	"github.com/maxaizer/homework-bot/internal/services"
	log "github.com/sirupsen/logrus"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func newPoller(cfg *config.Config, bus EventBus.Bus) *services.StatusPoller {

	client := practicum.NewClient(cfg.Practicum.Token)
	client.SetTimeout(cfg.Practicum.RequestTimeout)
	client.SetEndpoint(cfg.Practicum.Endpoint)
	client.SetRateLimit(cfg.Practicum.MaxRequestsPerSecond)

	poller, err := services.NewStatusPoller(bus, client, cfg.Practicum.RetryPeriod, time.Now().Unix())
	if err != nil {
		log.Fatalf("can't create status poller: %v", err)
	}
	return poller
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	log.Info("Бот запущен")

	if !cfg.CheckTokens() {
		log.WithField("missing", strings.Join(cfg.MissingTokens(), ", ")).
			Fatal("Отсутствует одна или несколько переменных окружения")
	}

	if _, err := metrics.StartMetricsServer(cfg.Metrics.Address); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeMetrics).
			Errorf("metrics server not started: %v", err)
	}

	sender, err := bot.NewSender(cfg.Bot)
	if err != nil {
		log.Fatalf("can't create telegram sender: %v", err)
	}

	bus := EventBus.New()

	tgbot, err := bot.NewBot(sender, bus)
	if err != nil {
		log.Fatalf("can't create bot: %v", err)
	}

	poller := newPoller(cfg, bus)

	if cfg.Practicum.HeartbeatCron != "" {
		heartbeat, err := services.NewHeartbeat(poller, cfg.Practicum.HeartbeatCron)
		if err != nil {
			log.Fatalf("can't create heartbeat: %v", err)
		}
		defer heartbeat.Stop()
	}

	poller.Run(ctx)

	log.Info("Shutting down services...")
	tgbot.Stop()
	log.Info("Services stopped.")
}
