package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tyagiab3/user-service/internal/events"
	"github.com/tyagiab3/user-service/internal/repository"
	"github.com/tyagiab3/user-service/pkg/util"
)

// SystemStats aggregates figures for the admin dashboard.
type SystemStats struct {
	TotalUsers int64                       `json:"total_users"`
	LastLogins []repository.LastLoginEntry `json:"last_logins"`
}

// AdminService provides system-level analytics for administrators.
type AdminService struct {
	users  repository.UserRepository
	audit  *AuditService
	logger *zap.Logger
}

// NewAdminService builds the service.
func NewAdminService(users repository.UserRepository, audit *AuditService, logger *zap.Logger) *AdminService {
	return &AdminService{users: users, audit: audit, logger: logger}
}

// SystemStats returns the total user count and per-user last-login times.
func (s *AdminService) SystemStats(ctx context.Context, actor string) (*SystemStats, error) {
	s.logger.Info("fetching system statistics", zap.String("actor", actor))

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	lastLogins, err := s.users.ListLastLogins(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	s.audit.Record(ctx, "ADMIN_STATS_VIEW", events.StatusSuccess, actor,
		fmt.Sprintf("Viewed system statistics (totalUsers=%d)", total))

	return &SystemStats{TotalUsers: total, LastLogins: lastLogins}, nil
}
