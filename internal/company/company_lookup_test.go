package company_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hrms/internal/company"
	"go-hrms/internal/shared/testdb"
)

func TestDomainLookup(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t, &company.Company{})
	repo := company.NewRepository(db)

	acme := &company.Company{ID: uuid.New(), Name: "Acme", EmailDomain: "acme.com", Timezone: "UTC", IsActive: true}
	require.NoError(t, repo.Create(ctx, acme))

	t.Run("cache miss loads and stores", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		lookup := company.NewDomainLookup(repo, rdb)

		key := company.GetDomainKey("acme.com")
		mock.ExpectGet(key).RedisNil()
		mock.Regexp().ExpectSet(key, `.*acme\.com.*`, 10*time.Minute).SetVal("OK")

		got, err := lookup.FindByEmailDomain(ctx, "ACME.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, acme.ID, got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		lookup := company.NewDomainLookup(repo, rdb)

		cached := company.Company{ID: uuid.New(), EmailDomain: "cached.com", Timezone: "UTC"}
		data, _ := json.Marshal(cached)
		mock.ExpectGet(company.GetDomainKey("cached.com")).SetVal(string(data))

		got, err := lookup.FindByEmailDomain(ctx, "cached.com")
		require.NoError(t, err)
		assert.Equal(t, cached.ID, got.ID)
	})

	t.Run("unknown domain is cached as missing", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		lookup := company.NewDomainLookup(repo, rdb)

		key := company.GetDomainKey("ghost.com")
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSet(key, "-", time.Minute).SetVal("OK")

		got, err := lookup.FindByEmailDomain(ctx, "ghost.com")
		require.NoError(t, err)
		assert.Nil(t, got)

		mock.ExpectGet(key).SetVal("-")
		got, err = lookup.FindByEmailDomain(ctx, "ghost.com")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("works without redis", func(t *testing.T) {
		lookup := company.NewDomainLookup(repo, nil)
		got, err := lookup.FindByEmailDomain(ctx, "acme.com")
		require.NoError(t, err)
		assert.Equal(t, acme.ID, got.ID)
	})
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "otherco.com", company.DomainOf("Admin@OtherCo.com"))
	assert.Equal(t, "", company.DomainOf("badge-17"))
}
