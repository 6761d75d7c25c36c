// Package telegram adapts the Bot API to the dialogue engine's transport.
package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/subscription-bot/server/internal/dialogue/engine"
	logx "github.com/subscription-bot/server/pkg/logger"
)

type Config struct {
	Token string `envconfig:"BOT_TOKEN" required:"true"`
	// Endpoint overrides the Bot API URL format, e.g. for a local Bot API server.
	Endpoint    string        `envconfig:"BOT_API_ENDPOINT" default:"https://api.telegram.org/bot%s/%s"`
	PollTimeout time.Duration `envconfig:"BOT_POLL_TIMEOUT" default:"60s"`
	Debug       bool          `envconfig:"BOT_DEBUG" default:"false"`
}

// Bot sends and receives through the Telegram Bot API.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg Config
}

// New authorises the token with getMe.
func New(cfg Config) (*Bot, error) {
	client := &http.Client{Timeout: cfg.PollTimeout + 10*time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.Endpoint, client)
	if err != nil {
		return nil, errors.Wrap(err, "telegram: authorise bot")
	}
	api.Debug = cfg.Debug
	logx.Info().Str("username", api.Self.UserName).Int64("id", api.Self.ID).Msg("bot authorised")
	return &Bot{api: api, cfg: cfg}, nil
}

// Username is the bot's own handle.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

func (b *Bot) Send(_ context.Context, chatID int64, m engine.OutMessage) (int, error) {
	sent, err := b.api.Send(buildMessage(chatID, m))
	if err != nil {
		return 0, errors.Wrapf(err, "telegram: send to %d", chatID)
	}
	return sent.MessageID, nil
}

func (b *Bot) Edit(_ context.Context, chatID int64, msgID int, text string) error {
	cfg := tgbotapi.NewEditMessageText(chatID, msgID, text)
	cfg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Request(cfg); err != nil {
		return errors.Wrapf(err, "telegram: edit %d/%d", chatID, msgID)
	}
	return nil
}

func (b *Bot) Delete(_ context.Context, chatID int64, msgID int) error {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID)); err != nil {
		return errors.Wrapf(err, "telegram: delete %d/%d", chatID, msgID)
	}
	return nil
}

type reaction struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

// React sets an emoji reaction. The library predates setMessageReaction, so
// the call goes through the raw request path.
func (b *Bot) React(_ context.Context, chatID int64, msgID int, emoji string) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_id", msgID)
	if err := params.AddInterface("reaction", []reaction{{Type: "emoji", Emoji: emoji}}); err != nil {
		return errors.Wrap(err, "telegram: encode reaction")
	}
	if _, err := b.api.MakeRequest("setMessageReaction", params); err != nil {
		return errors.Wrapf(err, "telegram: react %d/%d", chatID, msgID)
	}
	return nil
}

func (b *Bot) AnswerCallback(_ context.Context, callbackID, text string) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return errors.Wrap(err, "telegram: answer callback")
	}
	return nil
}

// Poll long-polls for updates and hands each one to submit until ctx ends.
func (b *Bot) Poll(ctx context.Context, submit func(context.Context, engine.Update)) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.cfg.PollTimeout / time.Second)
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			if upd, ok := convert(raw); ok {
				submit(ctx, upd)
			}
		}
	}
}

var _ engine.Transport = (*Bot)(nil)
