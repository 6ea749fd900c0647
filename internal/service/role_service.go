package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tyagiab3/user-service/internal/domain"
	"github.com/tyagiab3/user-service/internal/events"
	"github.com/tyagiab3/user-service/internal/repository"
	"github.com/tyagiab3/user-service/pkg/util"
)

// RoleService manages roles and user-role grants.
type RoleService struct {
	roles  repository.RoleRepository
	users  repository.UserRepository
	cache  repository.UserCache
	audit  *AuditService
	logger *zap.Logger
}

// NewRoleService builds the service.
func NewRoleService(roles repository.RoleRepository, users repository.UserRepository, cache repository.UserCache, audit *AuditService, logger *zap.Logger) *RoleService {
	return &RoleService{roles: roles, users: users, cache: cache, audit: audit, logger: logger}
}

// CreateRole creates a new role if the name is not already taken.
func (s *RoleService) CreateRole(ctx context.Context, actor, name string) (*domain.Role, error) {
	s.logger.Info("creating role", zap.String("role", name), zap.String("actor", actor))

	if name == "" {
		return nil, util.NewMissingField("Role name is required.")
	}

	if _, err := s.roles.GetByName(ctx, name); err == nil {
		msg := fmt.Sprintf("Attempt to create duplicate role '%s'", name)
		s.logger.Warn(msg, zap.String("actor", actor))
		s.audit.Record(ctx, "ROLE_CREATION", events.StatusFailure, actor, msg)
		return nil, util.NewConflict("Role already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewInternalError(err)
	}

	role := &domain.Role{Name: name}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, util.NewInternalError(err)
	}

	msg := fmt.Sprintf("Role '%s' created successfully", role.Name)
	s.audit.Record(ctx, "ROLE_CREATION", events.StatusSuccess, actor, msg)
	return role, nil
}

// AssignRoles grants one or more existing roles to a user and returns the
// user's resulting role set. Grants the user already holds are no-ops.
func (s *RoleService) AssignRoles(ctx context.Context, actor string, userID int64, roleNames []string) (*domain.User, []domain.Role, error) {
	s.logger.Info("assigning roles",
		zap.Strings("roles", roleNames),
		zap.Int64("user_id", userID),
		zap.String("actor", actor))

	if len(roleNames) == 0 {
		return nil, nil, util.NewMissingField("At least one role name is required.")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			msg := fmt.Sprintf("User not found: %d", userID)
			s.audit.Record(ctx, "ROLE_ASSIGNMENT", events.StatusFailure, actor, msg)
			return nil, nil, util.NewNotFound("user")
		}
		return nil, nil, util.NewInternalError(err)
	}

	added := 0
	for _, name := range roleNames {
		role, err := s.roles.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				msg := "Role not found: " + name
				s.audit.Record(ctx, "ROLE_ASSIGNMENT", events.StatusFailure, actor, msg)
				return nil, nil, util.NewNotFound("role")
			}
			return nil, nil, util.NewInternalError(err)
		}

		granted, err := s.roles.Assign(ctx, user.ID, role.ID)
		if err != nil {
			return nil, nil, util.NewInternalError(err)
		}
		if granted {
			added++
		}
	}

	if added > 0 {
		msg := fmt.Sprintf("Assigned roles %v to user '%s'", roleNames, user.Username)
		s.audit.Record(ctx, "ROLE_ASSIGNMENT", events.StatusSuccess, actor, msg)
	} else {
		msg := fmt.Sprintf("No new roles were added to user '%s' (already had them)", user.Username)
		s.audit.Record(ctx, "ROLE_ASSIGNMENT", "No Change", actor, msg)
	}

	s.invalidateCache(ctx, user.Email)

	current, err := s.roles.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, nil, util.NewInternalError(err)
	}
	return user, current, nil
}

// RemoveRole revokes a role from a user.
func (s *RoleService) RemoveRole(ctx context.Context, actor string, userID int64, roleName string) error {
	s.logger.Info("removing role",
		zap.String("role", roleName),
		zap.Int64("user_id", userID),
		zap.String("actor", actor))

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.audit.Record(ctx, "ROLE_REMOVAL", events.StatusFailure, actor, fmt.Sprintf("User not found: %d", userID))
			return util.NewNotFound("user")
		}
		return util.NewInternalError(err)
	}

	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.audit.Record(ctx, "ROLE_REMOVAL", events.StatusFailure, actor, "Role not found: "+roleName)
			return util.NewNotFound("role")
		}
		return util.NewInternalError(err)
	}

	removed, err := s.roles.Remove(ctx, user.ID, role.ID)
	if err != nil {
		return util.NewInternalError(err)
	}
	if !removed {
		s.audit.Record(ctx, "ROLE_REMOVAL", events.StatusFailure, actor,
			fmt.Sprintf("User '%s' does not hold role '%s'", user.Username, roleName))
		return util.NewNotFound("role assignment")
	}

	s.audit.Record(ctx, "ROLE_REMOVAL", events.StatusSuccess, actor,
		fmt.Sprintf("Removed role '%s' from user '%s'", roleName, user.Username))
	s.invalidateCache(ctx, user.Email)
	return nil
}

func (s *RoleService) invalidateCache(ctx context.Context, email string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, email); err != nil {
		s.logger.Debug("cache invalidation failed", zap.String("email", email), zap.Error(err))
	}
}
