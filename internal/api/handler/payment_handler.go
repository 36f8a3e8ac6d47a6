package handler

import (
	"github.com/gin-gonic/gin"

	"depothub/internal/dto"
	"depothub/internal/service"
	"depothub/pkg/response"
)

// PaymentHandler 费用模块 HTTP 处理器
type PaymentHandler struct {
	paySvc service.PaymentService
}

// NewPaymentHandler 创建 PaymentHandler
func NewPaymentHandler(paySvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paySvc: paySvc}
}

// Create 创建付款请求
// POST /api/v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.paySvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, result)
}

// ListByRequest 请求下的付款请求列表
// GET /api/v1/requests/:id/payments
func (h *PaymentHandler) ListByRequest(c *gin.Context) {
	list, err := h.paySvc.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, list)
}

// MarkPaid 标记已支付
// POST /api/v1/payments/:id/pay
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.paySvc.MarkPaid(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}
