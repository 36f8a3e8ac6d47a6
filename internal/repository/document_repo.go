package repository

import (
	"context"

	"gorm.io/gorm"

	"depothub/internal/model"
)

// DocumentRepository 单据元数据访问接口
type DocumentRepository interface {
	// Create 登记单据并在同一事务内累加所属请求的 documents_count
	Create(ctx context.Context, doc *model.DocumentFile) error
	GetByID(ctx context.Context, id string) (*model.DocumentFile, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.DocumentFile, error)
}

// documentRepo DocumentRepository 的 GORM 实现
type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo 创建 DocumentRepository 实例
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.DocumentFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		return tx.Model(&model.ServiceRequest{}).
			Where("request_id = ?", doc.RequestID).
			Update("documents_count", gorm.Expr("documents_count + 1")).Error
	})
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.DocumentFile, error) {
	var doc model.DocumentFile
	err := r.db.WithContext(ctx).
		Where("document_id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListByRequest(ctx context.Context, requestID string) ([]model.DocumentFile, error) {
	var docs []model.DocumentFile
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}
