package engine

import (
	"context"
	"errors"
	"fmt"
	"html"

	errx "github.com/subscription-bot/server/internal/core/error"
	"github.com/subscription-bot/server/internal/dialogue/model"
	logx "github.com/subscription-bot/server/pkg/logger"
)

var errRelayOff = errx.Configf("operator chat is not configured")

// askRelay stashes unrecognised text and asks the user whether to forward it.
func (e *Engine) askRelay(ctx context.Context, upd Update, sess *model.Session, text string) {
	sess.PendingRelay = text
	sess.Mode = model.ModeAwaitingRelayConfirmation
	e.save(ctx, sess)
	e.send(ctx, upd.ChatID, OutMessage{
		Text: fmt.Sprintf(textConfirmRelay, html.EscapeString(text)),
		HTML: true,
		Inline: [][]InlineButton{{
			{Text: buttonRelayYes, Data: dataRelayYes},
			{Text: buttonRelayNo, Data: dataRelayNo},
		}},
	})
}

// relay forwards text to the operator channel, threaded under the user's
// previous relay message. The thread anchor is written to both the directory
// and the session.
func (e *Engine) relay(ctx context.Context, upd Update, sess *model.Session, text string, isReply bool) error {
	if e.cfg.OperatorChatID == 0 {
		return errRelayOff
	}

	header := textRelayUserHeader
	if isReply {
		header = textRelayUserReply
	}
	body := fmt.Sprintf(textRelayBody, header, upd.From.ID,
		html.EscapeString(displayHandle(upd.From)),
		html.EscapeString(sess.CurrentNode),
		html.EscapeString(text))

	replyTo, ok := e.threads.Get(upd.From.ID)
	if !ok {
		replyTo = sess.LastAdminThreadID
	}

	id, err := e.tr.Send(ctx, e.cfg.OperatorChatID, OutMessage{Text: body, HTML: true, ReplyTo: replyTo})
	if err != nil {
		err = errx.RelayDelivery(err)
		logx.Ctx(ctx).Error().Err(err).Int64("user_id", upd.From.ID).Msg("failed to relay message to operators")
		return err
	}

	e.threads.Set(upd.From.ID, id)
	sess.LastAdminThreadID = id
	logx.Ctx(ctx).Info().Int64("user_id", upd.From.ID).Int("thread_id", id).Msg("relayed message to operators")
	return nil
}

func (e *Engine) handleCallback(ctx context.Context, upd Update) {
	cb := upd.Callback
	answer := func(text string) {
		if err := e.tr.AnswerCallback(ctx, cb.ID, text); err != nil {
			logx.Ctx(ctx).Warn().Err(err).Msg("failed to answer callback")
		}
	}

	if cb.Data != dataRelayYes && cb.Data != dataRelayNo {
		answer("")
		return
	}
	if e.graphErr != nil {
		answer("")
		e.sendConfigError(ctx, upd.ChatID)
		return
	}

	sess, err := e.sessions.Get(ctx, upd.From.ID)
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Int64("user_id", upd.From.ID).Msg("failed to load session")
		answer(textActionFailed)
		return
	}
	if sess == nil || sess.Mode != model.ModeAwaitingRelayConfirmation || sess.PendingRelay == "" {
		answer(textRelayStale)
		e.edit(ctx, upd.ChatID, cb.MessageID, textRelayStale)
		return
	}
	answer("")

	pending := sess.PendingRelay
	sess.PendingRelay = ""

	if cb.Data == dataRelayNo {
		sess.Mode = model.ModeActive
		e.save(ctx, sess)
		e.edit(ctx, upd.ChatID, cb.MessageID, textRelayDeclined)
		node := e.graph.Node(sess.CurrentNode)
		if node == nil {
			e.reportNodeResolution(ctx, upd, sess, errx.NodeResolution(sess.CurrentNode))
			return
		}
		e.render(ctx, upd.ChatID, sess, node)
		return
	}

	if err := e.relay(ctx, upd, sess, pending, false); err != nil {
		sess.Mode = model.ModeActive
		e.edit(ctx, upd.ChatID, cb.MessageID, relayFailureText(err))
	} else {
		sess.Mode = model.ModeInDialogue
		e.edit(ctx, upd.ChatID, cb.MessageID, textRelaySent)
	}
	e.save(ctx, sess)
}

func (e *Engine) edit(ctx context.Context, chatID int64, msgID int, text string) {
	if msgID == 0 {
		return
	}
	if err := e.tr.Edit(ctx, chatID, msgID, text); err != nil {
		logx.Ctx(ctx).Warn().Err(err).Int("message_id", msgID).Msg("failed to edit message")
	}
}

// relayFailureText is what the user sees when relay fails.
func relayFailureText(err error) string {
	if errors.Is(err, errRelayOff) {
		return textRelayOff
	}
	return textRelayFailed
}

func displayHandle(u User) string {
	switch {
	case u.Username != "":
		return "@" + u.Username
	case u.FirstName != "":
		return u.FirstName
	default:
		return "@unknown"
	}
}
