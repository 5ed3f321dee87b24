package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsEmbeddedLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	FromContext(ctx).Info("hello")

	require.Contains(t, buf.String(), "msg=hello")
}

func TestWith_AddsAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	ctx = With(ctx, "browser", "chromium")

	FromContext(ctx).Info("case started")

	require.Contains(t, buf.String(), "browser=chromium")
}

func TestFromContext_PanicsWithoutLogger(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { FromContext(context.Background()) })
}
