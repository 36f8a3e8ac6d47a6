package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"depothub/internal/dto"
	"depothub/internal/service"
	"depothub/pkg/response"
)

// InventoryHandler 库存模块 HTTP 处理器
type InventoryHandler struct {
	invSvc service.InventoryService
}

// NewInventoryHandler 创建 InventoryHandler
func NewInventoryHandler(invSvc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{invSvc: invSvc}
}

// Create 创建备件
// POST /api/v1/inventory/items
func (h *InventoryHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.invSvc.CreateItem(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, result)
}

// List 备件列表（支持关键字与低库存过滤）
// GET /api/v1/inventory/items
func (h *InventoryHandler) List(c *gin.Context) {
	var req dto.InventoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	req.Normalize()

	list, total, err := h.invSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Get 备件详情
// GET /api/v1/inventory/items/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	result, err := h.invSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// AdjustIn 入库
// POST /api/v1/inventory/items/:id/stock-in
func (h *InventoryHandler) AdjustIn(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AdjustInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.invSvc.AdjustIn(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Movements 库存流水（只追加）
// GET /api/v1/inventory/items/:id/movements
func (h *InventoryHandler) Movements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	list, total, err := h.invSvc.Movements(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}
