package dto

// ── 费用模块 DTO ──

// CreatePaymentRequest 创建付款请求
type CreatePaymentRequest struct {
	RequestID string  `json:"request_id" binding:"required,uuid"`
	Amount    float64 `json:"amount"     binding:"required,gt=0"`
	Note      string  `json:"note"       binding:"omitempty,max=500"`
}

// ── 聊天模块 DTO ──

// SendMessageRequest 发送聊天消息
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
