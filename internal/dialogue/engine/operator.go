package engine

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	logx "github.com/subscription-bot/server/pkg/logger"
)

var (
	relayIDCode  = regexp.MustCompile(`ID:\s*<code>(\d+)</code>`)
	relayIDPlain = regexp.MustCompile(`ID:\s*(\d+)`)
)

// handleOperator serves the operator channel. User menus never run here.
func (e *Engine) handleOperator(ctx context.Context, upd Update) {
	switch command(upd.Text) {
	case "/start":
		e.send(ctx, upd.ChatID, OutMessage{Text: textOperatorStart, HTML: true, RemoveKeyboard: true})
		return
	case "/help":
		e.send(ctx, upd.ChatID, OutMessage{Text: textOperatorHelp, HTML: true})
		return
	case "/id":
		role := textIsUser
		if e.isAdmin(upd.From.ID) {
			role = textIsAdmin
		}
		e.send(ctx, upd.ChatID, OutMessage{Text: fmt.Sprintf(textUserID, upd.From.ID, role), HTML: true})
		return
	case "/send":
		e.operatorSend(ctx, upd)
		return
	}

	if upd.ReplyTo != nil && upd.ReplyTo.FromBot {
		e.operatorReply(ctx, upd)
	}
}

// operatorReply delivers an operator's reply to the user named in the bot
// message it answers.
func (e *Engine) operatorReply(ctx context.Context, upd Update) {
	userID, ok := ParseRelayID(upd.ReplyTo.Text)
	if !ok || strings.TrimSpace(upd.Text) == "" {
		return
	}
	e.deliver(ctx, upd, userID, fmt.Sprintf(textOperatorReply, html.EscapeString(upd.Text)))
}

// operatorSend handles "/send ID TEXT".
func (e *Engine) operatorSend(ctx context.Context, upd Update) {
	parts := strings.SplitN(strings.TrimSpace(upd.Text), " ", 3)
	if len(parts) < 3 || strings.TrimSpace(parts[2]) == "" {
		e.send(ctx, upd.ChatID, OutMessage{Text: textSendUsage, HTML: true})
		return
	}
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || userID <= 0 {
		e.send(ctx, upd.ChatID, OutMessage{Text: textSendBadID, ReplyTo: upd.MessageID})
		return
	}
	e.deliver(ctx, upd, userID, fmt.Sprintf(textOperatorInit, html.EscapeString(strings.TrimSpace(parts[2]))))
}

// deliver sends text to the user and anchors the user's next relay under
// the operator's message.
func (e *Engine) deliver(ctx context.Context, upd Update, userID int64, text string) {
	if _, err := e.tr.Send(ctx, userID, OutMessage{Text: text, HTML: true}); err != nil {
		logx.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to deliver operator message")
		e.send(ctx, upd.ChatID, OutMessage{
			Text:    fmt.Sprintf(textDeliverFailed, html.EscapeString(err.Error())),
			HTML:    true,
			ReplyTo: upd.MessageID,
		})
		return
	}
	e.threads.Set(userID, upd.MessageID)
	logx.Ctx(ctx).Info().Int64("user_id", userID).Int64("operator_id", upd.From.ID).Msg("delivered operator message")

	if !e.react(ctx, upd.ChatID, upd.MessageID, reactionOK) {
		e.send(ctx, upd.ChatID, OutMessage{Text: "✅", ReplyTo: upd.MessageID})
	}
}

// ParseRelayID extracts the user id from a relay message, HTML or plain.
func ParseRelayID(text string) (int64, bool) {
	m := relayIDCode.FindStringSubmatch(text)
	if m == nil {
		m = relayIDPlain.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
