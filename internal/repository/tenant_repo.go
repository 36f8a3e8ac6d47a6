package repository

import (
	"context"

	"gorm.io/gorm"

	"depothub/internal/model"
)

// TenantRepository 客户公司数据访问接口
type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	List(ctx context.Context, offset, limit int) ([]model.Tenant, int64, error)
}

// tenantRepo TenantRepository 的 GORM 实现
type tenantRepo struct {
	db *gorm.DB
}

// NewTenantRepo 创建 TenantRepository 实例
func NewTenantRepo(db *gorm.DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", id).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepo) List(ctx context.Context, offset, limit int) ([]model.Tenant, int64, error) {
	var tenants []model.Tenant
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Tenant{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&tenants).Error; err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}
