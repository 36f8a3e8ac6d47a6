package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"depothub/internal/model"
	pkgerrors "depothub/pkg/errors"
)

// PaymentRepository 付款请求数据访问接口
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.PaymentRequest) error
	GetByID(ctx context.Context, id string) (*model.PaymentRequest, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.PaymentRequest, error)
	CountUnpaid(ctx context.Context, requestID string) (int64, error)
	// MarkPaid CAS 置为已支付；已支付或被并发修改时返回 ErrOptimisticLock
	MarkPaid(ctx context.Context, payment *model.PaymentRequest, actorID string) error
}

// paymentRepo PaymentRepository 的 GORM 实现
type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo 创建 PaymentRepository 实例
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.PaymentRequest) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.PaymentRequest, error) {
	var payment model.PaymentRequest
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) ListByRequest(ctx context.Context, requestID string) ([]model.PaymentRequest, error) {
	var payments []model.PaymentRequest
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) CountUnpaid(ctx context.Context, requestID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PaymentRequest{}).
		Where("request_id = ? AND status = ?", requestID, model.PaymentStatusUnpaid).
		Count(&count).Error
	return count, err
}

func (r *paymentRepo) MarkPaid(ctx context.Context, payment *model.PaymentRequest, actorID string) error {
	oldVersion := payment.Version
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.PaymentRequest{}).
		Where("payment_id = ? AND status = ? AND version = ?",
			payment.PaymentID, model.PaymentStatusUnpaid, oldVersion).
		Updates(map[string]interface{}{
			"status":     model.PaymentStatusPaid,
			"paid_at":    &now,
			"paid_by":    actorID,
			"updated_by": actorID,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	payment.Status = model.PaymentStatusPaid
	payment.PaidAt = &now
	payment.Version = oldVersion + 1
	return nil
}
