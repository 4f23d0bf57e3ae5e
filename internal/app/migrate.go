package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"go-hrms/internal/accrual"
	"go-hrms/internal/auth"
	"go-hrms/internal/company"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/shared/counter"
)

// Models lists every gorm-managed table in dependency order.
func Models() []any {
	return []any{
		&company.Company{},
		&employee.Employee{},
		&auth.User{},
		&auth.LoginAttempt{},
		&counter.Counter{},
		&leave.Holiday{},
		&leave.LeaveRequest{},
		&leave.LeaveBalance{},
		&accrual.Marker{},
	}
}

// outbox_events is written through database/sql, so it is not a gorm model.
const outboxDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id             UUID PRIMARY KEY,
	request_id     TEXT,
	company_id     UUID,
	aggregate_type TEXT NOT NULL,
	aggregate_id   TEXT NOT NULL,
	event_type     TEXT NOT NULL,
	topic          TEXT NOT NULL,
	payload        JSONB NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	retry_count    INT NOT NULL DEFAULT 0,
	error_message  TEXT,
	next_retry_at  TIMESTAMPTZ,
	processed_at   TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_outbox_events_pending
	ON outbox_events (status, created_at)
	WHERE status IN ('pending', 'failed');
`

// Migrate creates or updates the schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(outboxDDL).Error; err != nil {
		return fmt.Errorf("create outbox_events: %w", err)
	}
	return nil
}
