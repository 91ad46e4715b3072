package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLoggerTo_JSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))

	LogError(context.Background(), errors.New("boom"), "payout failed", Fields{"reconciliation": "rec-1"})

	assert.Contains(t, buf.String(), `"msg":"payout failed"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"reconciliation":"rec-1"`)

	assert.ErrorIs(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}

func TestUserMessage(t *testing.T) {
	base := errors.New("status is draft")
	err := NewUserError("Reconciliation must be approved before payout", base)

	assert.Equal(t, "Reconciliation must be approved before payout", UserMessage(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
}
