package dto

import "time"

// ── 服务请求模块 DTO ──

// CreateRequestRequest 创建服务请求
// 客户侧创建进入 PENDING；调度/管理员创建可直接进入 SCHEDULED（需预约时间）。
type CreateRequestRequest struct {
	Type               string     `json:"type"                      binding:"required,oneof=IMPORT EXPORT CONVERT"`
	ContainerNo        string     `json:"container_no"              binding:"required,max=20"`
	TenantID           string     `json:"tenant_id"                 binding:"required,uuid"`
	AppointmentTime    *time.Time `json:"appointment_time"          binding:"omitempty"`
	AppointmentLocType string     `json:"appointment_location_type" binding:"omitempty,oneof=DEPOT YARD"`
	AppointmentLocID   *string    `json:"appointment_location_id"   binding:"omitempty,uuid"`
	AppointmentNote    string     `json:"appointment_note"          binding:"omitempty,max=500"`
}

// RequestListRequest 服务请求列表查询参数
type RequestListRequest struct {
	PaginationRequest
	TenantID    string `form:"tenant_id"    binding:"omitempty,uuid"`
	Status      string `form:"status"       binding:"omitempty,max=30"`
	Type        string `form:"type"         binding:"omitempty,oneof=IMPORT EXPORT CONVERT"`
	ContainerNo string `form:"container_no" binding:"omitempty,max=20"`
}

// TransitionRequest 通用状态流转请求
type TransitionRequest struct {
	From   string `json:"from"   binding:"required"`
	To     string `json:"to"     binding:"required"`
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ScheduleRequest 排期请求（RECEIVED → SCHEDULED）
type ScheduleRequest struct {
	AppointmentTime time.Time `json:"appointment_time" binding:"required"`
	LocationType    string    `json:"location_type"    binding:"omitempty,oneof=DEPOT YARD"`
	LocationID      *string   `json:"location_id"      binding:"omitempty,uuid"`
	Note            string    `json:"note"             binding:"omitempty,max=500"`
}

// RejectRequest 拒绝请求
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// TransitionOption 当前状态下某一可执行流转的描述
type TransitionOption struct {
	To          string `json:"to"`
	Description string `json:"description"`
	ColorHint   string `json:"color_hint,omitempty"`
}
