package config

import (
	"fmt"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"slices"
)

type Backend string

const (
	BackendBotAPI  Backend = "botapi"
	BackendTelebot Backend = "telebot"
)

type BotConfig struct {
	Token   string  `mapstructure:"token"`
	ChatID  string  `mapstructure:"chat_id"`
	Backend Backend `mapstructure:"backend"`
}

func (config BotConfig) validate() error {
	switch config.Backend {
	case BackendBotAPI, BackendTelebot:
		return nil
	default:
		return fmt.Errorf("unknown bot backend: %q", config.Backend)
	}
}

func (config BotConfig) missingTokens() []string {
	tokens := map[string]string{
		"TELEGRAM_TOKEN":   config.Token,
		"TELEGRAM_CHAT_ID": config.ChatID,
	}
	missing := lo.Keys(lo.PickBy(tokens, func(_ string, value string) bool { return value == "" }))
	slices.Sort(missing)
	return missing
}

func (config BotConfig) bindEnvironmentVariables() error {
	var errs []error
	if err := viper.BindEnv("bot.token", "TELEGRAM_TOKEN"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("bot.chat_id", "TELEGRAM_CHAT_ID"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("bot.backend", "BOT_BACKEND"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
