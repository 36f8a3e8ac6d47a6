package handler

import (
	"github.com/gin-gonic/gin"

	"depothub/internal/dto"
	"depothub/internal/service"
	"depothub/pkg/response"
)

// GateHandler 闸口模块 HTTP 处理器
type GateHandler struct {
	gateSvc service.GateService
}

// NewGateHandler 创建 GateHandler
func NewGateHandler(gateSvc service.GateService) *GateHandler {
	return &GateHandler{gateSvc: gateSvc}
}

// ListForwarded 待闸口处理的请求列表
// GET /api/v1/gate/requests
func (h *GateHandler) ListForwarded(c *gin.Context) {
	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	req.Normalize()

	list, total, err := h.gateSvc.ListForwarded(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Approve 闸口放行：IMPORT/CONVERT 进场，EXPORT 出场
// POST /api/v1/gate/requests/:id/approve
func (h *GateHandler) Approve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.gateSvc.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 闸口拒绝
// POST /api/v1/gate/requests/:id/reject
func (h *GateHandler) Reject(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.gateSvc.Reject(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}
