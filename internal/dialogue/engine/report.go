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

// notifyOperators posts a diagnostic to the operator channel, if configured.
func (e *Engine) notifyOperators(ctx context.Context, text string) {
	if e.cfg.OperatorChatID == 0 {
		logx.Ctx(ctx).Warn().Msg("operator chat not configured, dropping diagnostic")
		return
	}
	if _, err := e.tr.Send(ctx, e.cfg.OperatorChatID, OutMessage{Text: text, HTML: true}); err != nil {
		logx.Ctx(ctx).Error().Err(err).Msg("failed to notify operators")
	}
}

func (e *Engine) sendConfigError(ctx context.Context, chatID int64) {
	e.send(ctx, chatID, OutMessage{
		Text:           fmt.Sprintf(textConfigError, html.EscapeString(errString(e.graphErr))),
		HTML:           true,
		RemoveKeyboard: true,
	})
}

// NotifyDegraded tells operators why the engine started without a graph.
func (e *Engine) NotifyDegraded(ctx context.Context) {
	if e.graphErr == nil {
		return
	}
	e.notifyOperators(ctx, fmt.Sprintf(textDiagConfig, html.EscapeString(e.graphErr.Error())))
}

// reportNodeResolution handles a destination missing from the graph: a retry
// prompt for the user and the node name with a stack for operators. The
// session stays where it was.
func (e *Engine) reportNodeResolution(ctx context.Context, upd Update, sess *model.Session, err error) {
	node := ""
	var app *errx.AppError
	if errors.As(err, &app) {
		node = app.Node
	}
	logx.Ctx(ctx).Error().Stack().Err(err).
		Int64("user_id", upd.From.ID).
		Str("node", node).
		Str("current_node", sess.CurrentNode).
		Msg("dialogue node not found")
	e.send(ctx, upd.ChatID, OutMessage{Text: textNodeMissing})
	e.notifyOperators(ctx, fmt.Sprintf(textDiagNode,
		html.EscapeString(node), upd.From.ID, html.EscapeString(sess.CurrentNode),
		html.EscapeString(fmt.Sprintf("%+v", err))))
}

// reportActionError reacts to a failed action. The session is not advanced.
func (e *Engine) reportActionError(ctx context.Context, upd Update, sess *model.Session, action string, err error) {
	log := logx.Ctx(ctx).Error().Stack().Err(err).
		Int64("user_id", upd.From.ID).
		Str("node", sess.CurrentNode).
		Str("action", action)

	switch {
	case isHandled(err):
		log.Msg("action failed, user notified")
		e.save(ctx, sess)
	case errx.IsKind(err, errx.KindNodeResolution):
		e.reportNodeResolution(ctx, upd, sess, err)
	case errx.IsKind(err, errx.KindConfig):
		log.Msg("action hit a configuration error")
		e.send(ctx, upd.ChatID, OutMessage{
			Text: fmt.Sprintf(textConfigError, html.EscapeString(err.Error())),
			HTML: true,
		})
		e.notifyOperators(ctx, fmt.Sprintf(textDiagConfig, html.EscapeString(err.Error())))
	default:
		log.Msg("action failed")
		e.send(ctx, upd.ChatID, OutMessage{Text: textActionFailed})
		e.notifyOperators(ctx, fmt.Sprintf(textDiagAction, upd.From.ID,
			html.EscapeString(sess.CurrentNode), html.EscapeString(action),
			html.EscapeString(fmt.Sprintf("%+v", err))))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
