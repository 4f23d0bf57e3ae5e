package bootstrap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditLog
}

func (r *recordingAudit) Log(_ context.Context, entry AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func TestStartHTTPServer_ShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := &recordingAudit{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartHTTPServer(ctx, gin.New(), ServerConfig{Port: "0", ShutdownTimeout: time.Second}, audit)
	}()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "SERVER_SHUTDOWN", audit.entries[0].Action)
	assert.Equal(t, "context canceled", audit.entries[0].Meta["cause"])
}

func TestZapAuditLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewZapAuditLogger(zap.New(core))
	l.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	l.Log(context.Background(), AuditLog{Action: "SERVER_START", Message: "up"})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "SERVER_START", fields["action"])
	assert.Equal(t, "2026-03-02T09:00:00Z", fields["timestamp"])
	assert.Equal(t, "audit", logs.All()[0].LoggerName)
}
