package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sharepoint-portal/portal-backend/internal/exceptions"
)

// Service implements the admin facing user management operations.
type Service struct {
	directory Directory
	logger    *zap.Logger
}

func NewService(directory Directory, logger *zap.Logger) *Service {
	return &Service{directory: directory, logger: logger}
}

func (s *Service) ListUsers(ctx context.Context, actor Principal) ([]User, error) {
	if !actor.IsAdmin() {
		return nil, exceptions.Forbidden("only administrators can list users")
	}
	all, err := s.directory.List(ctx)
	if err != nil {
		return nil, exceptions.Internal("failed to list users", err)
	}
	return all, nil
}

// UpdateRoles replaces the role list of a user. Administrators cannot drop their own Admin role.
func (s *Service) UpdateRoles(ctx context.Context, actor Principal, id uuid.UUID, roles []string) error {
	if !actor.IsAdmin() {
		return exceptions.Forbidden("only administrators can change roles")
	}
	if len(roles) == 0 {
		return exceptions.Validation("at least one role is required")
	}
	seen := NewRoleSet()
	cleaned := make([]string, 0, len(roles))
	for _, r := range roles {
		if !IsKnownRole(r) {
			return exceptions.Validation("unknown role: %s", r)
		}
		if seen.Contains(r) {
			continue
		}
		seen[r] = struct{}{}
		cleaned = append(cleaned, r)
	}
	if id == actor.ID && !seen.Contains(RoleAdmin) {
		return exceptions.Forbidden("cannot remove your own Admin role")
	}

	if err := s.directory.UpdateRoles(ctx, id, cleaned); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return exceptions.NotFound("user", id.String())
		}
		return exceptions.Internal("failed to update roles", err)
	}
	s.logger.Info("User roles updated",
		zap.String("user_id", id.String()),
		zap.String("by", actor.ID.String()),
		zap.Strings("roles", cleaned))
	return nil
}

// DeleteUser removes a user. Administrators cannot delete their own account.
func (s *Service) DeleteUser(ctx context.Context, actor Principal, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return exceptions.Forbidden("only administrators can delete users")
	}
	if id == actor.ID {
		return exceptions.Forbidden("cannot delete your own account")
	}
	if err := s.directory.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return exceptions.NotFound("user", id.String())
		}
		return exceptions.Internal("failed to delete user", err)
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()), zap.String("by", actor.ID.String()))
	return nil
}
