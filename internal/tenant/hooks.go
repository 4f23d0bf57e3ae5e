package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Write describes one mutation passing through a Repository.
type Write[T any] struct {
	Op        Op
	Entity    *T
	CompanyID uuid.UUID // uuid.Nil on unscoped writes
	Scoped    bool
	DB        *gorm.DB
}

// Hook observes writes. BeforeWrite may veto the write by returning an
// error; AfterWrite runs inside the same transaction, if any.
type Hook[T any] interface {
	BeforeWrite(ctx context.Context, w Write[T]) error
	AfterWrite(ctx context.Context, w Write[T]) error
}

// HookFuncs adapts plain functions to Hook. Nil fields are skipped.
type HookFuncs[T any] struct {
	Before func(ctx context.Context, w Write[T]) error
	After  func(ctx context.Context, w Write[T]) error
}

func (h HookFuncs[T]) BeforeWrite(ctx context.Context, w Write[T]) error {
	if h.Before == nil {
		return nil
	}
	return h.Before(ctx, w)
}

func (h HookFuncs[T]) AfterWrite(ctx context.Context, w Write[T]) error {
	if h.After == nil {
		return nil
	}
	return h.After(ctx, w)
}

// Validator is implemented by entities with invariants checked on every
// create and update.
type Validator interface {
	Validate() error
}

func validateHook[T any]() Hook[T] {
	return HookFuncs[T]{Before: func(_ context.Context, w Write[T]) error {
		if w.Op == OpDelete {
			return nil
		}
		if v, ok := any(w.Entity).(Validator); ok {
			return v.Validate()
		}
		return nil
	}}
}

// stampHook fills an empty owner column on scoped writes and refuses
// entities that already name another company.
func stampHook[T any](p policy) Hook[T] {
	return HookFuncs[T]{Before: func(_ context.Context, w Write[T]) error {
		if !w.Scoped || !p.owner {
			return nil
		}
		o := any(w.Entity).(Owner)
		current := o.OwnerCompanyID()
		if current != uuid.Nil && current != w.CompanyID {
			return ErrCrossTenantWrite
		}
		if current == uuid.Nil && w.Op != OpDelete {
			o.SetOwnerCompanyID(w.CompanyID)
		}
		return nil
	}}
}

// parentHook checks that the parent of a Descendant is inside the company.
func parentHook[T any](p policy) Hook[T] {
	return HookFuncs[T]{Before: func(ctx context.Context, w Write[T]) error {
		if !w.Scoped || p.relation == nil || w.Op == OpDelete {
			return nil
		}
		rel := *p.relation
		parentID := any(w.Entity).(Descendant).TenantParentID()

		var n int64
		err := w.DB.Session(&gorm.Session{NewDB: true}).WithContext(ctx).
			Table(rel.Table).
			Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: parentID}).
			Where(clause.Eq{Column: clause.Column{Name: rel.column()}, Value: w.CompanyID}).
			Count(&n).Error
		if err != nil {
			return fmt.Errorf("tenant: verify parent %s: %w", rel.Table, err)
		}
		if n == 0 {
			return ErrCrossTenantWrite
		}
		return nil
	}}
}

// unownedHook refuses scoped creates the repository cannot stamp.
func unownedHook[T any](p policy) Hook[T] {
	return HookFuncs[T]{Before: func(_ context.Context, w Write[T]) error {
		if w.Scoped && w.Op == OpCreate && !p.owner && p.relation == nil {
			return ErrUnownedCreate
		}
		return nil
	}}
}

func runBefore[T any](ctx context.Context, hooks []Hook[T], w Write[T]) error {
	for _, h := range hooks {
		if err := h.BeforeWrite(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func runAfter[T any](ctx context.Context, hooks []Hook[T], w Write[T]) error {
	var errs []error
	for _, h := range hooks {
		if err := h.AfterWrite(ctx, w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
