package repository

import (
	"context"

	"gorm.io/gorm"

	"depothub/internal/model"
)

// AuditRepository 审计日志访问接口。
// 只提供追加与查询，不提供更新或删除。
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	ListByEntity(ctx context.Context, entity, entityID string, offset, limit int) ([]model.AuditLog, int64, error)
}

// auditRepo AuditRepository 的 GORM 实现
type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo 创建 AuditRepository 实例
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) ListByEntity(ctx context.Context, entity, entityID string, offset, limit int) ([]model.AuditLog, int64, error) {
	var entries []model.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if entity != "" {
		db = db.Where("entity = ?", entity)
	}
	if entityID != "" {
		db = db.Where("entity_id = ?", entityID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
