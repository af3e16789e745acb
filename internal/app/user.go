package app

import (
	"context"
	"fmt"
	"strings"

	"bankisha/internal/domain"
	"bankisha/internal/store"
)

// ProfileUpdate carries the optional fields of an update-profile call.
// Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	PhotoURL    *string
	CompanyName *string
}

// Profile returns the caller's user record. A caller without a record yet
// gets a default document with role user instead of an error.
func (s *Service) Profile(ctx context.Context, callerID string) (domain.User, error) {
	user, ok, err := s.store.GetUser(callerID)
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return domain.User{ID: callerID, Role: domain.RoleUser}, nil
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	return user, nil
}

// UpdateProfile partial-merges the caller's profile. A company name is
// resolved to an existing company by exact trimmed match, or a new company
// owned by the caller is created. Returns the resolved company id, empty
// when no company name was given.
func (s *Service) UpdateProfile(ctx context.Context, callerID string, input ProfileUpdate) (string, error) {
	upd := store.UserUpdate{
		DisplayName: trimmed(input.DisplayName),
		Bio:         trimmed(input.Bio),
		PhotoURL:    trimmed(input.PhotoURL),
	}
	companyID := ""
	if input.CompanyName != nil {
		name := strings.TrimSpace(*input.CompanyName)
		if name == "" {
			return "", fmt.Errorf("%w: companyName must not be blank", ErrInvalid)
		}
		id, err := s.resolveCompany(callerID, name)
		if err != nil {
			return "", err
		}
		companyID = id
		upd.CompanyID = &companyID
	}
	if upd.DisplayName == nil && upd.Bio == nil && upd.PhotoURL == nil && upd.CompanyID == nil {
		return "", fmt.Errorf("%w: nothing to update", ErrInvalid)
	}
	if _, err := s.store.UpdateUser(callerID, upd); err != nil {
		return "", fmt.Errorf("update user: %w", err)
	}
	return companyID, nil
}

func (s *Service) resolveCompany(ownerID, name string) (string, error) {
	company, ok, err := s.store.FindCompanyByName(name)
	if err != nil {
		return "", fmt.Errorf("find company: %w", err)
	}
	if ok {
		return company.ID, nil
	}
	company = domain.Company{
		ID:        store.NewID(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateCompany(company); err != nil {
		return "", fmt.Errorf("create company: %w", err)
	}
	return company.ID, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
