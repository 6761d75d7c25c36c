package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/subscription-bot/server/internal/dialogue/engine"
)

// convert maps a Bot API update onto the engine's. Updates the engine has no
// use for, such as edits or messages from bots, are dropped.
func convert(raw tgbotapi.Update) (engine.Update, bool) {
	switch {
	case raw.CallbackQuery != nil:
		cq := raw.CallbackQuery
		if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
			return engine.Update{}, false
		}
		return engine.Update{
			ChatID: cq.Message.Chat.ID,
			From:   user(cq.From),
			Callback: &engine.Callback{
				ID:        cq.ID,
				Data:      cq.Data,
				MessageID: cq.Message.MessageID,
			},
		}, true

	case raw.Message != nil:
		m := raw.Message
		if m.From == nil || m.From.IsBot || m.Chat == nil {
			return engine.Update{}, false
		}
		upd := engine.Update{
			ChatID:    m.Chat.ID,
			MessageID: m.MessageID,
			From:      user(m.From),
			Text:      textOf(m),
		}
		if r := m.ReplyToMessage; r != nil {
			upd.ReplyTo = &engine.Reply{
				MessageID: r.MessageID,
				FromBot:   r.From != nil && r.From.IsBot,
				Text:      textOf(r),
			}
		}
		return upd, true
	}
	return engine.Update{}, false
}

func user(u *tgbotapi.User) engine.User {
	return engine.User{ID: u.ID, Username: u.UserName, FirstName: u.FirstName}
}

func textOf(m *tgbotapi.Message) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// buildMessage picks a photo or text message and attaches the markup.
func buildMessage(chatID int64, m engine.OutMessage) tgbotapi.Chattable {
	markup := replyMarkup(m)
	parseMode := ""
	if m.HTML {
		parseMode = tgbotapi.ModeHTML
	}

	if m.Photo != "" {
		p := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(m.Photo))
		p.Caption = m.Text
		p.ParseMode = parseMode
		p.ReplyMarkup = markup
		p.ReplyToMessageID = m.ReplyTo
		p.AllowSendingWithoutReply = m.ReplyTo != 0
		return p
	}

	msg := tgbotapi.NewMessage(chatID, m.Text)
	msg.ParseMode = parseMode
	msg.ReplyMarkup = markup
	msg.ReplyToMessageID = m.ReplyTo
	msg.AllowSendingWithoutReply = m.ReplyTo != 0
	msg.DisableWebPagePreview = true
	return msg
}

func replyMarkup(m engine.OutMessage) any {
	switch {
	case len(m.Inline) > 0:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(m.Inline))
		for _, r := range m.Inline {
			row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
			for _, b := range r {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, row)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	case len(m.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(m.Keyboard))
		for _, r := range m.Keyboard {
			row := make([]tgbotapi.KeyboardButton, 0, len(r))
			for _, label := range r {
				row = append(row, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, row)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		return kb
	case m.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(true)
	}
	return nil
}
