package service

import (
	"context"

	"go.uber.org/zap"

	"depothub/internal/model"
	"depothub/internal/repository"
)

// AuditService 审计日志服务。
// Record 采用 fire-and-record 语义：写入失败只记日志，绝不向调用方传播，
// 避免审计故障使已成功的业务变更看起来失败。
type AuditService interface {
	Record(ctx context.Context, actorID, action, entity, entityID string, meta model.JSONMap)
	ListByEntity(ctx context.Context, entity, entityID string, page, pageSize int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, actorID, action, entity, entityID string, meta model.JSONMap) {
	entry := &model.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("审计日志写入失败",
			zap.String("action", action),
			zap.String("entity", entity),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}

func (s *auditService) ListByEntity(ctx context.Context, entity, entityID string, page, pageSize int) ([]model.AuditLog, int64, error) {
	offset := (page - 1) * pageSize
	return s.repo.ListByEntity(ctx, entity, entityID, offset, pageSize)
}
