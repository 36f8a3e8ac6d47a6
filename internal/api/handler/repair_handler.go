package handler

import (
	"github.com/gin-gonic/gin"

	"depothub/internal/dto"
	"depothub/internal/service"
	"depothub/pkg/response"
)

// RepairHandler 维修模块 HTTP 处理器
type RepairHandler struct {
	repairSvc service.RepairService
}

// NewRepairHandler 创建 RepairHandler
func NewRepairHandler(repairSvc service.RepairService) *RepairHandler {
	return &RepairHandler{repairSvc: repairSvc}
}

// Create 创建维修工单（检查报价）
// POST /api/v1/repairs
func (h *RepairHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateRepairTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.repairSvc.CreateTicket(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, result)
}

// List 工单列表
// GET /api/v1/repairs
func (h *RepairHandler) List(c *gin.Context) {
	var req dto.RepairListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	req.Normalize()

	list, total, err := h.repairSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Get 工单详情
// GET /api/v1/repairs/:id
func (h *RepairHandler) Get(c *gin.Context) {
	result, err := h.repairSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Approve 审批通过：原子扣减全部备件库存，工单进入 PENDING_ACCEPT
// POST /api/v1/repairs/:id/approve
func (h *RepairHandler) Approve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ReviewRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.repairSvc.Approve(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 审批拒绝
// POST /api/v1/repairs/:id/reject
func (h *RepairHandler) Reject(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ReviewRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.repairSvc.Reject(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// AcceptQuote 客户确认报价
// POST /api/v1/repairs/:id/accept
func (h *RepairHandler) AcceptQuote(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.repairSvc.AcceptQuote(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Complete 维修完成
// POST /api/v1/repairs/:id/complete
func (h *RepairHandler) Complete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.repairSvc.Complete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}
