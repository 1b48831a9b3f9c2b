package logger

import (
	"context"
	"github.com/maxaizer/homework-bot/internal/config"
	"github.com/maxaizer/homework-bot/pkg/loki"
	log "github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypePracticumApi = "practicum_api"
	ErrorTypeResponse     = "response"
	ErrorTypeStatus       = "unknown_status"
	ErrorTypeTgApi        = "tg_api"
	ErrorTypeMetrics      = "metrics"
)

var (
	logFile    *os.File
	lokiPusher *loki.Pusher
)

func Setup(ctx context.Context, cfg config.LoggerConfig) {

	if dir := filepath.Dir(cfg.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create log directory: %v", err)
		}
	}

	var err error
	logFile, err = os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	log.SetReportCaller(true)
	log.SetFormatter(&lineFormatter{TimestampFormat: "2006-01-02 15:04:05,000"})
	log.SetLevel(parseLevel(cfg.LogLevel))
	log.RegisterExitHandler(Cleanup)

	addPrometheusHook()

	if cfg.LokiURL != "" {
		lokiCfg := loki.Config{
			Url:      cfg.LokiURL,
			Username: cfg.LokiUser,
			Password: cfg.LokiPassword,
			Labels:   map[string]string{"app": cfg.AppName},
		}
		if err := addLokiHook(ctx, lokiCfg, log.GetLevel()); err != nil {
			log.Errorf("can't enable loki logging: %v", err)
		}
	}
}

func parseLevel(level config.Level) log.Level {
	switch level {
	case config.LevelInfo:
		return log.InfoLevel
	case config.LevelDebug:
		return log.DebugLevel
	case config.LevelWarning:
		return log.WarnLevel
	case config.LevelError:
		return log.ErrorLevel
	case config.LevelFatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func Cleanup() {
	if lokiPusher != nil {
		lokiPusher.Stop()
		lokiPusher = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
