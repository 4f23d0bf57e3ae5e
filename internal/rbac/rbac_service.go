package rbac

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"go-hrms/internal/domain"
)

var ErrUnknownRole = errors.New("rbac: unknown role")

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
	Permissions(role string) ([]string, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewService seeds the enforcer with the role hierarchy and default grants.
func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	s := &service{enforcer: enforcer, logger: l}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()
	for _, h := range Hierarchy {
		if _, err := s.enforcer.AddGroupingPolicy(h[0], h[1]); err != nil {
			return fmt.Errorf("rbac load hierarchy %s: %w", h[0], err)
		}
	}
	for _, p := range DefaultPolicies {
		if _, err := s.enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("rbac load policy %v: %w", p, err)
		}
	}

	s.logger.Info("rbac policy loaded",
		zap.Int("roles", len(Hierarchy)+1),
		zap.Int("policies", len(DefaultPolicies)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	if !ValidRole(req.Role) {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

// Permissions flattens the role's grants, inherited ones included, into
// sorted "resource:action" strings.
func (s *service) Permissions(role string) ([]string, error) {
	if !ValidRole(role) {
		return nil, ErrUnknownRole
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.enforcer.GetImplicitPermissionsForUser(role)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rules))
	perms := make([]string, 0, len(rules))
	for _, r := range rules {
		if len(r) < 3 {
			continue
		}
		p := r[1] + ":" + r[2]
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms, nil
}
