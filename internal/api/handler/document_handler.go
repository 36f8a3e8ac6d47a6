package handler

import (
	"github.com/gin-gonic/gin"

	"depothub/internal/dto"
	"depothub/internal/service"
	"depothub/pkg/response"
)

// DocumentHandler 单证模块 HTTP 处理器
type DocumentHandler struct {
	docSvc service.DocumentService
}

// NewDocumentHandler 创建 DocumentHandler
func NewDocumentHandler(docSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc}
}

// PresignUpload 申请上传预签名 URL
// POST /api/v1/documents/presign
func (h *DocumentHandler) PresignUpload(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.docSvc.PresignUpload(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Register 登记已上传的单证；SCHEDULED 下的补充单证触发自动转发
// POST /api/v1/documents
func (h *DocumentHandler) Register(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.docSvc.Register(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, result)
}

// ListByRequest 请求下的单证列表
// GET /api/v1/requests/:id/documents
func (h *DocumentHandler) ListByRequest(c *gin.Context) {
	list, err := h.docSvc.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, list)
}

// PresignDownload 申请下载预签名 URL
// GET /api/v1/documents/:id/download
func (h *DocumentHandler) PresignDownload(c *gin.Context) {
	result, err := h.docSvc.PresignDownload(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}
