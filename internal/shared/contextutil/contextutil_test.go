package contextutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetadata(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithRole(ctx, "HR")

	md := ExtractMetadata(ctx)
	assert.Equal(t, "req-1", md.RequestID)
	assert.Equal(t, "user-1", md.UserID)
	assert.Equal(t, "HR", GetRole(ctx))
}

func TestGetLoggerFallback(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background(), nil))

	def := zap.NewExample()
	assert.Same(t, def, GetLogger(context.Background(), def))

	scoped := zap.NewNop()
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, GetLogger(ctx, def))
}
