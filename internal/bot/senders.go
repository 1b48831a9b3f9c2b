package bot

import (
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/homework-bot/internal/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
	"net/http"
	"strconv"
	"strings"
)

type messageSender interface {
	Send(c botApi.Chattable) (botApi.Message, error)
}

// BotAPISender sends through go-telegram-bot-api. Chat can be a numeric id or
// a public channel name such as @my_channel.
type BotAPISender struct {
	api    messageSender
	chatID int64
	// channel is set when the chat is addressed by username
	channel string
}

// NewBotAPISender does not contact Telegram. A bad token or an unreachable API
// shows up as a Send error.
func NewBotAPISender(token, chat string) (*BotAPISender, error) {
	api := &botApi.BotAPI{
		Token:  token,
		Client: &http.Client{},
		Buffer: 100,
	}
	api.SetAPIEndpoint(botApi.APIEndpoint)

	if err := botApi.SetLogger(log.StandardLogger()); err != nil {
		return nil, err
	}

	return newBotAPISender(api, chat)
}

func newBotAPISender(api messageSender, chat string) (*BotAPISender, error) {
	sender := &BotAPISender{api: api}

	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		sender.chatID = id
		return sender, nil
	}

	if strings.HasPrefix(chat, "@") && len(chat) > 1 {
		sender.channel = chat
		return sender, nil
	}

	return nil, fmt.Errorf("invalid chat id: %q", chat)
}

func (s *BotAPISender) Send(text string) error {
	var msg botApi.MessageConfig
	if s.channel != "" {
		msg = botApi.NewMessageToChannel(s.channel, text)
	} else {
		msg = botApi.NewMessage(s.chatID, text)
	}
	_, err := s.api.Send(msg)
	return err
}

// TelebotSender sends through telebot. Only numeric chat ids are supported.
type TelebotSender struct {
	bot  *telebot.Bot
	chat *telebot.Chat
}

func NewTelebotSender(token, chat string) (*TelebotSender, error) {
	id, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id %q: %w", chat, err)
	}

	b, err := telebot.NewBot(telebot.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, err
	}

	return &TelebotSender{bot: b, chat: &telebot.Chat{ID: id}}, nil
}

func (s *TelebotSender) Send(text string) error {
	_, err := s.bot.Send(s.chat, text)
	return err
}

func NewSender(cfg config.BotConfig) (Sender, error) {
	switch cfg.Backend {
	case config.BackendTelebot:
		sender, err := NewTelebotSender(cfg.Token, cfg.ChatID)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case config.BackendBotAPI, "":
		sender, err := NewBotAPISender(cfg.Token, cfg.ChatID)
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("unknown bot backend: %q", cfg.Backend)
	}
}
