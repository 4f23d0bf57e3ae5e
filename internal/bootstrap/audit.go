package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditLog is a process level event worth keeping apart from request logs.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

// ZapAuditLogger writes audit entries to the "audit" logger.
type ZapAuditLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewZapAuditLogger(logger ...*zap.Logger) *ZapAuditLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &ZapAuditLogger{logger: l, now: time.Now}
}

func (l *ZapAuditLogger) Log(_ context.Context, entry AuditLog) {
	l.logger.Info("audit event",
		zap.String("timestamp", l.now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
