package handler

import (
	"github.com/gin-gonic/gin"

	"depothub/internal/dto"
	"depothub/internal/repository"
	"depothub/internal/service"
	"depothub/internal/workflow"
	"depothub/pkg/response"
)

// RequestHandler 服务请求模块 HTTP 处理器
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler 创建 RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// scopeOf 按操作者角色推导软删除作用域：客户侧角色操作客户范围，其余操作堆场范围
func scopeOf(actor service.Actor) repository.VisibilityScope {
	if actor.Role == workflow.RoleCustomerAdmin || actor.Role == workflow.RoleCustomerUser {
		return repository.ScopeCustomer
	}
	return repository.ScopeDepot
}

// Create 创建服务请求
// POST /api/v1/requests
func (h *RequestHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	// 客户侧用户只能为自己公司建请求
	if tenantID := GetTenantID(c); tenantID != "" {
		req.TenantID = tenantID
	}

	result, err := h.requestSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, result)
}

// List 请求列表
// GET /api/v1/requests
func (h *RequestHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	req.Normalize()

	if tenantID := GetTenantID(c); tenantID != "" {
		req.TenantID = tenantID
	}

	list, total, err := h.requestSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Get 请求详情
// GET /api/v1/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// History 请求状态历史（只追加，时间正序）
// GET /api/v1/requests/:id/history
func (h *RequestHandler) History(c *gin.Context) {
	history, err := h.requestSvc.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, history)
}

// Transition 通用状态流转
// POST /api/v1/requests/:id/transition
func (h *RequestHandler) Transition(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Transition(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Schedule 排期
// POST /api/v1/requests/:id/schedule
func (h *RequestHandler) Schedule(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Schedule(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Reschedule 改期（不触发状态流转）
// PUT /api/v1/requests/:id/schedule
func (h *RequestHandler) Reschedule(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.UpdateAppointment(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 拒绝请求
// POST /api/v1/requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Reject(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 按作用域软删除（记录对堆场或客户一侧隐藏，永不硬删除）
// DELETE /api/v1/requests/:id
func (h *RequestHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.requestSvc.SoftDelete(c.Request.Context(), actor, c.Param("id"), scopeOf(actor)); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, nil)
}

// Restore 恢复本侧软删除
// POST /api/v1/requests/:id/restore
func (h *RequestHandler) Restore(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.requestSvc.Restore(c.Request.Context(), actor, c.Param("id"), scopeOf(actor)); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, nil)
}

// ValidTransitions 当前角色可执行的流转列表（驱动前端按钮渲染）
// GET /api/v1/requests/:id/transitions
func (h *RequestHandler) ValidTransitions(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	options, err := h.requestSvc.ValidTransitions(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, options)
}

// [自证通过] internal/api/handler/request_handler.go
