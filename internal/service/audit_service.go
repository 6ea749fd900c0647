package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tyagiab3/user-service/internal/domain"
	"github.com/tyagiab3/user-service/internal/repository"
)

// AuditService records significant actions. Recording is best-effort: a
// failed insert is logged and never escalated to the caller.
type AuditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService builds the service.
func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record persists an audit entry with the specified action details.
func (s *AuditService) Record(ctx context.Context, actionType, status, performedBy, details string) {
	entry := &domain.AuditLog{
		ActionType:  actionType,
		Status:      status,
		PerformedBy: performedBy,
		Details:     details,
	}

	if s.repo != nil {
		if err := s.repo.Insert(ctx, entry); err != nil {
			s.logger.Warn("audit insert failed",
				zap.String("action_type", actionType),
				zap.Error(err))
		}
	}

	s.logger.Info("audit",
		zap.String("action_type", actionType),
		zap.String("status", status),
		zap.String("performed_by", performedBy),
		zap.String("details", details))
}
