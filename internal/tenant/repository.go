package tenant

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope is a gorm scope applied on top of the tenant filter.
type Scope = func(*gorm.DB) *gorm.DB

// Repository is a gorm repository whose every read and write is restricted
// to the company in the call's context. Calls without an active company fail
// with ErrContextMissing; the Unscoped copy is the explicit escape hatch for
// system operations.
type Repository[T any] struct {
	db       *gorm.DB
	policy   policy
	unscoped bool
	hooks    []Hook[T]
}

// NewRepository resolves the isolation policy of T and panics when T
// declares none, so misconfigured entities fail at wiring time.
func NewRepository[T any](db *gorm.DB) *Repository[T] {
	p, err := policyFor[T]()
	if err != nil {
		panic(err)
	}
	return &Repository[T]{
		db:     db,
		policy: p,
		hooks: []Hook[T]{
			unownedHook[T](p),
			stampHook[T](p),
			parentHook[T](p),
			validateHook[T](),
		},
	}
}

func (r *Repository[T]) clone() *Repository[T] {
	cp := *r
	cp.hooks = append([]Hook[T](nil), r.hooks...)
	return &cp
}

func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	cp := r.clone()
	cp.db = tx
	return cp
}

// WithHooks returns a copy running hooks after the built-in ones.
func (r *Repository[T]) WithHooks(hooks ...Hook[T]) *Repository[T] {
	cp := r.clone()
	cp.hooks = append(cp.hooks, hooks...)
	return cp
}

// Unscoped returns a copy that ignores the tenant context entirely.
func (r *Repository[T]) Unscoped() *Repository[T] {
	cp := r.clone()
	cp.unscoped = true
	return cp
}

// IsUnscoped reports whether r bypasses tenant filtering.
func (r *Repository[T]) IsUnscoped() bool {
	return r.unscoped
}

// DB exposes the underlying handle for transactions.
func (r *Repository[T]) DB() *gorm.DB {
	return r.db
}

// Query returns a builder on T already restricted to the active company.
func (r *Repository[T]) Query(ctx context.Context) (*gorm.DB, error) {
	return r.query(ctx, false)
}

func (r *Repository[T]) query(ctx context.Context, write bool) (*gorm.DB, error) {
	db := r.db.WithContext(ctx).Model(new(T))
	if r.unscoped {
		return db, nil
	}

	companyID, err := Require(ctx)
	if err != nil {
		return nil, err
	}

	filter := r.policy.read
	if write {
		filter = r.policy.write
	}
	return db.Clauses(clause.Where{Exprs: []clause.Expression{filter(companyID)}}), nil
}

func (r *Repository[T]) Find(ctx context.Context, scopes ...Scope) ([]T, error) {
	db, err := r.Query(ctx)
	if err != nil {
		return nil, err
	}

	var out []T
	if err := db.Scopes(scopes...).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// First returns gorm.ErrRecordNotFound when nothing in the company matches.
func (r *Repository[T]) First(ctx context.Context, scopes ...Scope) (*T, error) {
	db, err := r.Query(ctx)
	if err != nil {
		return nil, err
	}

	var out T
	if err := db.Scopes(scopes...).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository[T]) FindByID(ctx context.Context, id any, scopes ...Scope) (*T, error) {
	return r.First(ctx, append([]Scope{func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey}, Value: id})
	}}, scopes...)...)
}

func (r *Repository[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	db, err := r.Query(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := db.Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	w, err := r.begin(ctx, OpCreate, entity)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return err
	}
	return runAfter(ctx, r.hooks, w)
}

// CreateIfAbsent inserts entity unless a row with the same unique key
// exists. It reports whether a row was written.
func (r *Repository[T]) CreateIfAbsent(ctx context.Context, entity *T) (bool, error) {
	w, err := r.begin(ctx, OpCreate, entity)
	if err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entity)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, runAfter(ctx, r.hooks, w)
}

// Update writes every column of entity. Extra conditions, such as a version
// check, are ANDed with the primary key and the tenant filter; when no row
// matches the result is gorm.ErrRecordNotFound.
func (r *Repository[T]) Update(ctx context.Context, entity *T, conds ...clause.Expression) error {
	w, err := r.begin(ctx, OpUpdate, entity)
	if err != nil {
		return err
	}

	db, err := r.query(ctx, true)
	if err != nil {
		return err
	}
	if len(conds) > 0 {
		db = db.Clauses(clause.Where{Exprs: conds})
	}

	res := db.Model(entity).Select("*").Updates(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return runAfter(ctx, r.hooks, w)
}

func (r *Repository[T]) Delete(ctx context.Context, entity *T) error {
	w, err := r.begin(ctx, OpDelete, entity)
	if err != nil {
		return err
	}

	db, err := r.query(ctx, true)
	if err != nil {
		return err
	}

	res := db.Delete(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return runAfter(ctx, r.hooks, w)
}

func (r *Repository[T]) begin(ctx context.Context, op Op, entity *T) (Write[T], error) {
	if entity == nil {
		return Write[T]{}, errors.New("tenant: nil entity")
	}

	w := Write[T]{Op: op, Entity: entity, DB: r.db, Scoped: !r.unscoped}
	if w.Scoped {
		companyID, err := Require(ctx)
		if err != nil {
			return Write[T]{}, err
		}
		w.CompanyID = companyID
	}

	return w, runBefore(ctx, r.hooks, w)
}
