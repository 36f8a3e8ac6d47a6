package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"depothub/internal/dto"
	"depothub/internal/model"
	"depothub/internal/repository"
	pkgerrors "depothub/pkg/errors"
)

// PaymentService 付款请求业务接口。
// IN_PROGRESS → COMPLETED 的结案守卫依赖这里维护的 UNPAID 计数。
type PaymentService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreatePaymentRequest) (*model.PaymentRequest, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.PaymentRequest, error)
	MarkPaid(ctx context.Context, actor Actor, paymentID string) (*model.PaymentRequest, error)
}

type paymentService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
}

// NewPaymentService 创建 PaymentService 实例
func NewPaymentService(repo *repository.Repository, audit AuditService, logger *zap.Logger) PaymentService {
	return &paymentService{repo: repo, audit: audit, logger: logger}
}

func (s *paymentService) Create(ctx context.Context, actor Actor, req *dto.CreatePaymentRequest) (*model.PaymentRequest, error) {
	if req.Amount <= 0 {
		return nil, pkgerrors.Validation("金额必须为正")
	}
	if _, err := s.repo.Request.GetByID(ctx, req.RequestID); err != nil {
		return nil, translateNotFound(err, "REQUEST", req.RequestID)
	}

	payment := &model.PaymentRequest{
		RequestID: req.RequestID,
		Amount:    req.Amount,
		Status:    model.PaymentStatusUnpaid,
		Note:      req.Note,
		VersionedModel: model.VersionedModel{
			SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &actor.ID}},
		},
	}
	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.logger.Error("创建付款请求失败", zap.Error(err))
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "PAYMENT.CREATED", "PAYMENT", payment.PaymentID,
		model.JSONMap{"request_id": req.RequestID, "amount": req.Amount})

	return payment, nil
}

func (s *paymentService) ListByRequest(ctx context.Context, requestID string) ([]model.PaymentRequest, error) {
	if _, err := s.repo.Request.GetByID(ctx, requestID); err != nil {
		return nil, translateNotFound(err, "REQUEST", requestID)
	}
	return s.repo.Payment.ListByRequest(ctx, requestID)
}

func (s *paymentService) MarkPaid(ctx context.Context, actor Actor, paymentID string) (*model.PaymentRequest, error) {
	payment, err := s.repo.Payment.GetByID(ctx, paymentID)
	if err != nil {
		return nil, translateNotFound(err, "PAYMENT", paymentID)
	}
	if payment.Status != model.PaymentStatusUnpaid {
		return nil, pkgerrors.InvalidState("PAYMENT",
			fmt.Sprintf("付款请求状态 %s 不允许支付", payment.Status))
	}

	if err := s.repo.Payment.MarkPaid(ctx, payment, actor.ID); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.InvalidState("PAYMENT", "付款请求已被并发操作修改")
		}
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "PAYMENT.PAID", "PAYMENT", payment.PaymentID,
		model.JSONMap{"request_id": payment.RequestID, "amount": payment.Amount})

	return payment, nil
}
