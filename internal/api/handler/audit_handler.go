package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"depothub/internal/service"
	"depothub/pkg/response"
)

// AuditHandler 审计日志 HTTP 处理器
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// ListByEntity 按实体查询审计日志
// GET /api/v1/audit?entity=REQUEST&entity_id=xxx
func (h *AuditHandler) ListByEntity(c *gin.Context) {
	entity := c.Query("entity")
	entityID := c.Query("entity_id")
	if entity == "" || entityID == "" {
		response.BadRequest(c, 10001, "entity 与 entity_id 不能为空")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	list, total, err := h.auditSvc.ListByEntity(c.Request.Context(), entity, entityID, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}
