package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("returns the embedded logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := slog.New(slog.NewTextHandler(buf, nil))
		ctx := WithLogger(context.Background(), logger)

		require.Same(t, logger, FromContext(ctx))
	})

	t.Run("falls back to the default logger", func(t *testing.T) {
		require.Same(t, slog.Default(), FromContext(context.Background()))
	})
}

func TestWith(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))

	ctx = With(ctx, "component", "queue")
	FromContext(ctx).Info("hello")

	require.Contains(t, buf.String(), "component=queue")
	require.Contains(t, buf.String(), "msg=hello")
}
