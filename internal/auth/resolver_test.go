package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hrms/internal/auth"
	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/company"
	"go-hrms/internal/tenant"
)

func TestResolver_Authenticate_Success(t *testing.T) {
	f := newFixture(t)
	r := f.resolver(fakeLookup{})

	for _, identifier := range []string{"EMP-000001", "alice", "alice@mycompany.com", "  ALICE  "} {
		t.Run(identifier, func(t *testing.T) {
			ctx, id, err := r.Authenticate(context.Background(), identifier, password)
			require.NoError(t, err)

			assert.Equal(t, f.alice.ID, id.UserID)
			assert.Equal(t, f.myCo.ID, id.CompanyID)

			got, err := tenant.Require(ctx)
			require.NoError(t, err)
			assert.Equal(t, f.myCo.ID, got)
		})
	}
}

func TestResolver_Authenticate_Failures(t *testing.T) {
	f := newFixture(t)
	r := f.resolver(fakeLookup{})

	tests := []struct {
		name       string
		identifier string
		secret     string
		kind       auth.FailureKind
	}{
		{"unknown identifier", "nobody", password, auth.FailureUnknownIdentifier},
		{"empty identifier", "", password, auth.FailureUnknownIdentifier},
		{"email shape only tried with @", "alice.mycompany.com", password, auth.FailureUnknownIdentifier},
		{"bad secret", "alice", "wrong", auth.FailureBadSecret},
		{"foreign domain with good secret", "admin@otherco.com", password, auth.FailureTenantMismatch},
		{"foreign domain with bad secret", "admin@otherco.com", "wrong", auth.FailureTenantMismatch},
		{"foreign domain by username", "admin", "wrong", auth.FailureTenantMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, err := r.Authenticate(context.Background(), tt.identifier, tt.secret)

			kind, ok := auth.KindOf(err)
			require.True(t, ok, "expected a FailureError, got %v", err)
			assert.Equal(t, tt.kind, kind)
			assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)

			_, seeded := tenant.CompanyIDFrom(ctx)
			assert.False(t, seeded)
		})
	}
}

func TestResolver_DomainOwnedByAnotherCompany(t *testing.T) {
	f := newFixture(t)
	r := f.resolver(fakeLookup{fn: func(_ context.Context, domain string) (*company.Company, error) {
		assert.Equal(t, "mycompany.com", domain)
		return f.otherCo, nil
	}})

	_, _, err := r.Authenticate(context.Background(), "alice@mycompany.com", password)

	kind, _ := auth.KindOf(err)
	assert.Equal(t, auth.FailureTenantMismatch, kind)
}

func TestResolver_Inactive(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, f.myCo.ID, "sleepy", "sleepy@mycompany.com", nil, false)
	r := f.resolver(fakeLookup{})

	_, _, err := r.Authenticate(context.Background(), "sleepy", password)

	kind, _ := auth.KindOf(err)
	assert.Equal(t, auth.FailureInactive, kind)
}
