// Package tenant scopes data access to the company of the current operation.
//
// The active company travels in the context.Context of each call. There is
// no process-wide tenant state, so concurrent requests can never observe each
// other's scope.
package tenant

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

type scope struct {
	companyID uuid.UUID
}

// WithCompanyID returns a child context scoped to companyID. A nil UUID
// produces an unscoped context.
func WithCompanyID(ctx context.Context, companyID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, scope{companyID: companyID})
}

// WithoutCompany returns a child context with no active company, hiding any
// company set by a parent context. Used by system operations such as the
// accrual job.
func WithoutCompany(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, scope{})
}

// CompanyIDFrom reports the active company of ctx.
func CompanyIDFrom(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	s, ok := ctx.Value(ctxKey{}).(scope)
	if !ok || s.companyID == uuid.Nil {
		return uuid.Nil, false
	}
	return s.companyID, true
}

// Require is CompanyIDFrom returning ErrContextMissing when no company is set.
func Require(ctx context.Context) (uuid.UUID, error) {
	id, ok := CompanyIDFrom(ctx)
	if !ok {
		return uuid.Nil, ErrContextMissing
	}
	return id, nil
}

// Run calls fn with ctx scoped to companyID. The scope ends when fn returns.
func Run(ctx context.Context, companyID uuid.UUID, fn func(ctx context.Context) error) error {
	if companyID == uuid.Nil {
		return ErrContextMissing
	}
	return fn(WithCompanyID(ctx, companyID))
}
