package actions

import (
	"context"
	"fmt"
	"html"
	"strings"

	errx "github.com/subscription-bot/server/internal/core/error"
	"github.com/subscription-bot/server/internal/dialogue/model"
	"github.com/subscription-bot/server/internal/records/mirror"
	logx "github.com/subscription-bot/server/pkg/logger"
)

const (
	waitText       = "⏳ Сохраняем заявку..."
	cloudSoftText  = "✅ Заявка принята. Синхронизация с облаком будет выполнена позже."
	ioFailureText  = "⚠️ Файл заявок сейчас занят. Заявка не сохранена, попробуйте отправить её ещё раз через минуту."
	genericFailure = "⚠️ Ошибка сохранения: "
)

// submit writes the session as a record. A mirror failure still counts as
// success for the user; operators get the diagnostic.
func (r *Registry) submit(ctx context.Context, in *Input) (model.Signal, error) {
	if r.deps.Records == nil {
		return model.NoSignal, errx.Configf("submit_to_excel: record store is not configured")
	}
	waitID, werr := in.Reply.Reply(ctx, waitText)
	if werr != nil {
		logx.Warn().Err(werr).Msg("failed to send wait placeholder")
	}

	rec := model.Record{
		Time:   r.deps.Now(),
		UserID: in.Session.UserID,
		Handle: handle(in.Username),
		Fields: map[string]string{},
	}
	for k, v := range in.Session.Fields {
		if !strings.HasPrefix(k, PricePrefix) {
			rec.Fields[k] = v
		}
	}

	err := r.deps.Records.Append(ctx, rec)
	switch {
	case err == nil:
		if waitID != 0 {
			if derr := in.Reply.Delete(ctx, waitID); derr != nil {
				logx.Warn().Err(derr).Msg("failed to delete wait placeholder")
			}
		}
		return model.NoSignal, nil

	case errx.IsKind(err, errx.KindCloudUpload):
		r.replace(ctx, in, waitID, cloudSoftText)
		in.Reply.NotifyOperators(ctx, fmt.Sprintf(
			"☁️ <b>Ошибка синхронизации с облаком</b>\nЗаявка %s (ID: <code>%d</code>) сохранена локально.\n\n<b>Причина:</b> %s\n<b>Что сделать:</b> %s",
			rec.Handle, rec.UserID, html.EscapeString(err.Error()), mirror.Remediation(err)))
		return model.NoSignal, nil

	case errx.IsKind(err, errx.KindIO):
		r.replace(ctx, in, waitID, ioFailureText)
		return model.NoSignal, fmt.Errorf("%w: %w", ErrHandled, err)

	default:
		r.replace(ctx, in, waitID, genericFailure+html.EscapeString(err.Error()))
		return model.NoSignal, fmt.Errorf("%w: %w", ErrHandled, err)
	}
}

// replace edits the placeholder, or sends a new message when there is none.
func (r *Registry) replace(ctx context.Context, in *Input, waitID int, text string) {
	if waitID != 0 {
		if err := in.Reply.Edit(ctx, waitID, text); err == nil {
			return
		}
	}
	if _, err := in.Reply.Reply(ctx, text); err != nil {
		logx.Warn().Err(err).Msg("failed to report submission result")
	}
}

func handle(username string) string {
	if username == "" {
		return "@unknown"
	}
	return "@" + strings.TrimPrefix(username, "@")
}
