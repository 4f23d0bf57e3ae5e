package company

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	DomainKeyPrefix = "companies:domain:"
	domainCacheTTL  = 10 * time.Minute
	missingTTL      = time.Minute
	missingMarker   = "-"
)

func GetDomainKey(domain string) string {
	return DomainKeyPrefix + NormalizeDomain(domain)
}

// DomainLookup resolves which company, if any, owns an email domain.
// A nil company with a nil error means the domain is unregistered.
type DomainLookup interface {
	FindByEmailDomain(ctx context.Context, domain string) (*Company, error)
}

type cachedLookup struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewDomainLookup caches lookups in Redis when rdb is not nil and collapses
// concurrent misses for the same domain into one query.
func NewDomainLookup(repo Repository, rdb *redis.Client, logger ...*zap.Logger) DomainLookup {
	l := zap.L().Named("company.lookup")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.lookup")
	}
	return &cachedLookup{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (l *cachedLookup) FindByEmailDomain(ctx context.Context, domain string) (*Company, error) {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return nil, nil
	}
	key := GetDomainKey(domain)

	if l.rdb != nil {
		if cached, err := l.rdb.Get(ctx, key).Result(); err == nil {
			if cached == missingMarker {
				return nil, nil
			}
			var c Company
			if json.Unmarshal([]byte(cached), &c) == nil {
				return &c, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			l.logger.Warn("domain cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := l.sf.Do(key, func() (any, error) {
		c, err := l.repo.GetByEmailDomain(ctx, domain)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.store(ctx, key, missingMarker, missingTTL)
			return (*Company)(nil), nil
		}
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(c); err == nil {
			l.store(ctx, key, string(data), domainCacheTTL)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Company), nil
}

func (l *cachedLookup) store(ctx context.Context, key, value string, ttl time.Duration) {
	if l.rdb == nil {
		return
	}
	if err := l.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		l.logger.Warn("domain cache write failed", zap.String("key", key), zap.Error(err))
	}
}
