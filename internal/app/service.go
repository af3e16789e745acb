// Package app holds the core service logic behind the HTTP handlers:
// role lookup, authorization-aware mutators and readers, and the
// generation pipelines.
package app

import (
	"errors"
	"fmt"
	"time"

	"bankisha/internal/ai"
	"bankisha/internal/authz"
	"bankisha/internal/domain"
	"bankisha/internal/storage"
	"bankisha/internal/store"
)

// Sentinel errors mapped to HTTP statuses by the response shaper.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalid          = errors.New("invalid request")
	ErrGenerationFailed = errors.New("generation failed")
)

// SuperAdminSettingKeys lists setting keys readable only by superAdmin.
var SuperAdminSettingKeys = []string{"appDirection"}

// Config wires the service dependencies.
type Config struct {
	Store     store.Store
	Objects   storage.ObjectStore
	Generator ai.TextGenerator
	Trigger   *ProcessTrigger
	Now       func() time.Time
}

// Service implements the application operations over injected clients.
type Service struct {
	store          store.Store
	objects        storage.ObjectStore
	generator      ai.TextGenerator
	trigger        *ProcessTrigger
	settingsPolicy *authz.KeyPolicy
	now            func() time.Time
}

// New builds a Service. Trigger may be nil when processing is disabled.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("app service requires a store")
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	policy := authz.NewKeyPolicy()
	for _, key := range SuperAdminSettingKeys {
		policy.Restrict(key, domain.RoleSuperAdmin)
	}
	return &Service{
		store:          cfg.Store,
		objects:        cfg.Objects,
		generator:      cfg.Generator,
		trigger:        cfg.Trigger,
		settingsPolicy: policy,
		now:            now,
	}, nil
}

// RoleOf returns the caller's role, defaulting to user when no record
// exists yet. First sign-in happens before any profile write.
func (s *Service) RoleOf(userID string) (domain.UserRole, error) {
	user, ok, err := s.store.GetUser(userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !ok || user.Role == "" {
		return domain.RoleUser, nil
	}
	return user.Role, nil
}

func (s *Service) requireRole(userID string, policy authz.Policy) (domain.UserRole, error) {
	role, err := s.RoleOf(userID)
	if err != nil {
		return "", err
	}
	if !policy.Permits(role) {
		return role, ErrForbidden
	}
	return role, nil
}
