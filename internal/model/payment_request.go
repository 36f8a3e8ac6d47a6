package model

import "time"

// 付款请求状态
const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
)

// PaymentRequest 付款请求表 — 对应 payment_requests
// IN_PROGRESS → COMPLETED 的守卫要求该请求下无 UNPAID 记录。
type PaymentRequest struct {
	PaymentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	RequestID string  `gorm:"type:uuid;not null;index"                       json:"request_id"`
	Amount    float64 `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	Status    string  `gorm:"type:varchar(20);not null;default:'UNPAID'"     json:"status"`
	Note      string  `gorm:"type:varchar(500)"                              json:"note,omitempty"`

	PaidAt *time.Time `json:"paid_at,omitempty"`
	PaidBy *string    `gorm:"type:uuid" json:"paid_by,omitempty"`

	VersionedModel
}

// TableName 指定表名
func (PaymentRequest) TableName() string { return "payment_requests" }
