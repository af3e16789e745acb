package app

import (
	"context"
	"fmt"
	"strings"

	"bankisha/internal/authz"
	"bankisha/internal/domain"
)

// GetSystemSetting returns the setting document data, or an empty map when
// the key has never been written. Restricted keys require superAdmin.
func (s *Service) GetSystemSetting(ctx context.Context, callerID, key string) (map[string]any, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key required", ErrInvalid)
	}
	role, err := s.RoleOf(callerID)
	if err != nil {
		return nil, err
	}
	if !s.settingsPolicy.Permits(key, role) {
		return nil, ErrForbidden
	}
	setting, ok, err := s.store.GetSystemSetting(key)
	if err != nil {
		return nil, fmt.Errorf("load setting: %w", err)
	}
	if !ok || setting.Data == nil {
		return map[string]any{}, nil
	}
	return setting.Data, nil
}

// UpdateSystemSetting partial-merges data into the setting document.
// Writes are superAdmin only regardless of key.
func (s *Service) UpdateSystemSetting(ctx context.Context, callerID, key string, data map[string]any) error {
	key = strings.TrimSpace(key)
	if key == "" || len(data) == 0 {
		return fmt.Errorf("%w: key and data required", ErrInvalid)
	}
	if _, err := s.requireRole(callerID, authz.Require(domain.RoleSuperAdmin)); err != nil {
		return err
	}
	if err := s.store.MergeSystemSetting(key, data, callerID); err != nil {
		return fmt.Errorf("merge setting: %w", err)
	}
	return nil
}
