package wrap

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCarriesLogCtx(t *testing.T) {
	sentinel := errors.New("boom")

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithAction(ctx, "request_booking")

	err := Error(ctx, fmt.Errorf("reserve: %w", sentinel))
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)

	got := ErrorCtx(context.Background(), err).Value(LogCtxKey).(LogCtx)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "request_booking", got.Action)
}

func TestErrorRewrapKeepsChain(t *testing.T) {
	sentinel := errors.New("boom")

	inner := Error(WithEventID(context.Background(), "ev-1"), sentinel)
	outer := Error(WithAction(context.Background(), "trigger_sos"), inner)

	assert.ErrorIs(t, outer, sentinel)
	assert.Equal(t, "boom", outer.Error())

	got := ErrorCtx(context.Background(), outer).Value(LogCtxKey).(LogCtx)
	assert.Equal(t, "ev-1", got.EventID)
	assert.Equal(t, "trigger_sos", got.Action)
}

func TestErrorNil(t *testing.T) {
	assert.NoError(t, Error(context.Background(), nil))
}
