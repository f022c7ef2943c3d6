package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action    string
		UserID    string
		RequestID string
		BookingID string
		EventID   string
	}

	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

func fromCtx(ctx context.Context) LogCtx {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	return lc
}

// WithLogCtx merges newLc into the LogCtx already stored in ctx. Empty fields keep the old value.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	lc := fromCtx(ctx)
	if newLc.Action != "" {
		lc.Action = newLc.Action
	}
	if newLc.UserID != "" {
		lc.UserID = newLc.UserID
	}
	if newLc.RequestID != "" {
		lc.RequestID = newLc.RequestID
	}
	if newLc.BookingID != "" {
		lc.BookingID = newLc.BookingID
	}
	if newLc.EventID != "" {
		lc.EventID = newLc.EventID
	}
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	lc := fromCtx(ctx)
	lc.Action = action
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithUserID adds or updates the UserID in the LogCtx within the context
func WithUserID(ctx context.Context, userID string) context.Context {
	lc := fromCtx(ctx)
	lc.UserID = userID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := fromCtx(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, LogCtxKey, lc)
}

func WithBookingID(ctx context.Context, bookingID string) context.Context {
	lc := fromCtx(ctx)
	lc.BookingID = bookingID
	return context.WithValue(ctx, LogCtxKey, lc)
}

func WithEventID(ctx context.Context, eventID string) context.Context {
	lc := fromCtx(ctx)
	lc.EventID = eventID
	return context.WithValue(ctx, LogCtxKey, lc)
}
