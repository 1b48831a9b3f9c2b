package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/maxaizer/homework-bot/internal/clients/practicum"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Bot       BotConfig       `mapstructure:"bot"`
	Practicum PracticumConfig `mapstructure:"practicum"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	_ = godotenv.Load()

	file := configFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		file = value
	}

	config, err := loadConfig(file)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

// CheckTokens reports whether every secret required to start polling is set.
func (config Config) CheckTokens() bool {
	return len(config.MissingTokens()) == 0
}

func (config Config) MissingTokens() []string {
	return append(config.Practicum.missingTokens(), config.Bot.missingTokens()...)
}

func loadConfig(file string) (*Config, error) {

	viper.Reset()
	viper.AutomaticEnv()
	setDefaults()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(file); statErr == nil {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
	} else {
		log.Warnf("config file %s not found, using defaults and environment", file)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("logger.log_level", string(LevelInfo))
	viper.SetDefault("logger.output_file", "error.log")
	viper.SetDefault("logger.app_name", "homework-bot")
	viper.SetDefault("bot.backend", string(BackendBotAPI))
	viper.SetDefault("practicum.endpoint", practicum.DefaultEndpoint)
	viper.SetDefault("practicum.retry_period", DefaultRetryPeriod)
	viper.SetDefault("practicum.request_timeout", DefaultRequestTimeout)
	viper.SetDefault("practicum.heartbeat_cron", "0 9 * * *")
	viper.SetDefault("metrics.address", ":8080")
}

func bindEnvironmentVariables() error {
	var errs []error

	bot, practicum, logger := BotConfig{}, PracticumConfig{}, LoggerConfig{}

	if err := bot.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("BotConfig: %w", err))
	}

	if err := practicum.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("PracticumConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := viper.BindEnv("metrics.address", "METRICS_ADDRESS"); err != nil {
		errs = append(errs, fmt.Errorf("MetricsConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.Practicum.validate(); err != nil {
		errs = append(errs, fmt.Errorf("PracticumConfig: %w", err))
	}

	if err := config.Bot.validate(); err != nil {
		errs = append(errs, fmt.Errorf("BotConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func createMultiError(errs []error) error {
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}
