package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"depothub/internal/repository"
	"depothub/internal/service"
	"depothub/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRequests 导出服务请求台账
// GET /api/v1/export/requests
func (h *ExportHandler) ExportRequests(c *gin.Context) {
	params := repository.RequestListParams{
		TenantID:    c.Query("tenant_id"),
		Status:      c.Query("status"),
		Type:        c.Query("type"),
		ContainerNo: c.Query("container_no"),
	}

	buf, filename, err := h.exportSvc.ExportRequests(c.Request.Context(), params)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, buf, filename)
}

// ExportRepairCosts 导出维修费用汇总
// GET /api/v1/export/repairs
func (h *ExportHandler) ExportRepairCosts(c *gin.Context) {
	params := repository.RepairListParams{
		Status:      c.Query("status"),
		ContainerNo: c.Query("container_no"),
		RequestID:   c.Query("request_id"),
	}

	buf, filename, err := h.exportSvc.ExportRepairCosts(c.Request.Context(), params)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, buf, filename)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 16101, "无可导出数据")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
