package tenant

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

const DefaultColumn = "company_id"

// Filterer is implemented by entities that declare their own tenant
// predicate. It wins over every other capability.
type Filterer interface {
	TenantFilter(companyID uuid.UUID) clause.Expression
}

// Owner is implemented by entities that carry the company id in one of their
// own columns.
type Owner interface {
	TenantColumn() string
	OwnerCompanyID() uuid.UUID
	SetOwnerCompanyID(companyID uuid.UUID)
}

// Descendant is implemented by entities that reach their company through a
// parent row, e.g. a balance through its employee.
type Descendant interface {
	TenantRelation() Relation
	TenantParentID() uuid.UUID
}

type Relation struct {
	Table      string // parent table
	ForeignKey string // column on the entity holding the parent id
	Column     string // company column on the parent; defaults to company_id
}

func (r Relation) column() string {
	if r.Column == "" {
		return DefaultColumn
	}
	return r.Column
}

type policyKind int

const (
	policyFilter policyKind = iota + 1
	policyOwner
	policyDescendant
)

func (k policyKind) String() string {
	switch k {
	case policyFilter:
		return "filter"
	case policyOwner:
		return "owner"
	case policyDescendant:
		return "descendant"
	}
	return "none"
}

// policy is the isolation strategy of one entity type, resolved once.
type policy struct {
	kind     policyKind
	read     func(companyID uuid.UUID) clause.Expression
	write    func(companyID uuid.UUID) clause.Expression
	owner    bool
	relation *Relation
}

var policies sync.Map // reflect.Type -> policy

func policyFor[T any]() (policy, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if p, ok := policies.Load(typ); ok {
		return p.(policy), nil
	}

	p, err := resolvePolicy(any(new(T)))
	if err != nil {
		return policy{}, fmt.Errorf("tenant: %s: %w", typ, err)
	}
	policies.Store(typ, p)
	return p, nil
}

// resolvePolicy applies the capability order Filterer, Owner, Descendant.
// Reads use the first capability found. Writes on an Owner are always
// restricted to its own column so shared rows visible through a Filterer
// cannot be modified by a tenant.
func resolvePolicy(entity any) (policy, error) {
	var p policy

	if o, ok := entity.(Owner); ok {
		col := o.TenantColumn()
		p.owner = true
		p.write = func(id uuid.UUID) clause.Expression { return ColumnFilter(col, id) }
		p.kind = policyOwner
		p.read = p.write
	}

	if d, ok := entity.(Descendant); ok && !p.owner {
		rel := d.TenantRelation()
		p.relation = &rel
		p.kind = policyDescendant
		p.read = func(id uuid.UUID) clause.Expression { return RelationFilter(rel, id) }
		p.write = p.read
	}

	if f, ok := entity.(Filterer); ok {
		p.kind = policyFilter
		p.read = f.TenantFilter
		if p.write == nil {
			p.write = f.TenantFilter
		}
	}

	if p.kind == 0 {
		return policy{}, fmt.Errorf("entity implements none of Filterer, Owner or Descendant")
	}
	return p, nil
}

// ColumnFilter matches rows whose column equals companyID.
func ColumnFilter(column string, companyID uuid.UUID) clause.Expression {
	return clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: column},
		Value:  companyID,
	}
}

// RelationFilter matches rows whose parent belongs to companyID.
func RelationFilter(rel Relation, companyID uuid.UUID) clause.Expression {
	return clause.Expr{
		SQL: "? IN (SELECT id FROM ? WHERE ? = ?)",
		Vars: []any{
			clause.Column{Table: clause.CurrentTable, Name: rel.ForeignKey},
			clause.Table{Name: rel.Table},
			clause.Column{Name: rel.column()},
			companyID,
		},
	}
}
