package wrap

import (
	"context"
	"errors"
)

// Error attaches the LogCtx of ctx to err. An error that already carries a LogCtx
// gets the newer context merged in; its chain is left as is.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var e *errorWithLogCtx
	if errors.As(err, &e) {
		if x, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
			e.logCtx = merge(e.logCtx, x)
		}
		return err
	}

	return &errorWithLogCtx{
		err:    err,
		logCtx: fromCtx(ctx),
	}
}

func merge(old, cur LogCtx) LogCtx {
	if cur.Action == "" {
		cur.Action = old.Action
	}
	if cur.UserID == "" {
		cur.UserID = old.UserID
	}
	if cur.RequestID == "" {
		cur.RequestID = old.RequestID
	}
	if cur.BookingID == "" {
		cur.BookingID = old.BookingID
	}
	if cur.EventID == "" {
		cur.EventID = old.EventID
	}
	return cur
}
