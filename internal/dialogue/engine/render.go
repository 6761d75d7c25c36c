package engine

import (
	"context"
	"os"
	"path/filepath"

	"github.com/subscription-bot/server/internal/dialogue/graph"
	"github.com/subscription-bot/server/internal/dialogue/model"
	logx "github.com/subscription-bot/server/pkg/logger"
)

// render shows node to the user with the session's fields substituted. A node
// without a keyboard removes any menu left over from the previous screen.
func (e *Engine) render(ctx context.Context, chatID int64, sess *model.Session, node *model.Node) {
	msg := OutMessage{
		Text: graph.Render(node.Text, sess.Fields),
		HTML: true,
	}
	if msg.Text == "" {
		msg.Text = textEmptyScreen
	}
	if len(node.Keyboard) > 0 {
		msg.Keyboard = node.Keyboard
	} else {
		msg.RemoveKeyboard = true
	}

	if node.Image != "" {
		if path, ok := e.resolveMedia(node.Image); ok {
			photo := msg
			photo.Photo = path
			if _, err := e.tr.Send(ctx, chatID, photo); err == nil {
				return
			} else {
				logx.Ctx(ctx).Warn().Err(err).Str("node", node.Name).Str("image", path).Msg("failed to send photo, falling back to text")
			}
		} else {
			logx.Ctx(ctx).Warn().Str("node", node.Name).Str("image", node.Image).Msg("image not found, sending text only")
		}
	}
	e.send(ctx, chatID, msg)
}

func (e *Engine) resolveMedia(ref string) (string, bool) {
	path := ref
	if !filepath.IsAbs(path) && e.cfg.MediaDir != "" {
		path = filepath.Join(e.cfg.MediaDir, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// send delivers m and logs failures. The user-facing flow never blocks on it.
func (e *Engine) send(ctx context.Context, chatID int64, m OutMessage) int {
	id, err := e.tr.Send(ctx, chatID, m)
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
		return 0
	}
	return id
}

// react sets an acknowledgement reaction. Failures are logged only.
func (e *Engine) react(ctx context.Context, chatID int64, msgID int, emoji string) bool {
	if msgID == 0 {
		return false
	}
	if err := e.tr.React(ctx, chatID, msgID, emoji); err != nil {
		logx.Ctx(ctx).Warn().Err(err).Int64("chat_id", chatID).Int("message_id", msgID).Msg("failed to set reaction")
		return false
	}
	return true
}
