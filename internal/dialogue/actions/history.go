package actions

import (
	"context"

	"github.com/subscription-bot/server/internal/dialogue/model"
)

// reusable are the fields copied from a previous submission.
var reusable = []string{"name", "address", "phone", "delivery"}

type lookupResult struct {
	rec *model.Record
	err error
}

// lookupHistory finds the user's previous submission and signals found or
// not_found. The workbook scan runs on its own goroutine and is abandoned if
// ctx ends first.
func (r *Registry) lookupHistory(ctx context.Context, in *Input) (model.Signal, error) {
	if r.deps.Records == nil {
		return model.Emit(model.SignalNotFound), nil
	}
	done := make(chan lookupResult, 1)
	go func() {
		rec, err := r.deps.Records.FindLast(ctx, in.Session.UserID)
		done <- lookupResult{rec: rec, err: err}
	}()

	var res lookupResult
	select {
	case <-ctx.Done():
		return model.NoSignal, ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return model.NoSignal, res.err
	}
	if res.rec == nil {
		return model.Emit(model.SignalNotFound), nil
	}
	for _, f := range reusable {
		if v := res.rec.Fields[f]; v != "" {
			in.Session.Set(f, v)
		}
	}
	if !res.rec.Time.IsZero() {
		in.Session.Set("last_date", res.rec.Time.Format("02.01.2006"))
	}
	return model.Emit(model.SignalFound), nil
}
