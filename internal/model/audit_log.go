package model

import "time"

// AuditLog 审计日志表 — 对应 audit_logs
// 只追加：永不更新或删除；每个成功的状态变更调用恰好写入一条。
// action 遵循 ENTITY.VERB 约定，如 REQUEST.FORWARDED、REPAIR.APPROVED。
type AuditLog struct {
	AuditID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_id"`
	ActorID   string    `gorm:"type:uuid;not null;index"                       json:"actor_id"`
	Action    string    `gorm:"type:varchar(50);not null"                      json:"action"`
	Entity    string    `gorm:"type:varchar(30);not null;index:idx_audit_entity" json:"entity"`
	EntityID  string    `gorm:"type:uuid;not null;index:idx_audit_entity"      json:"entity_id"`
	Meta      JSONMap   `gorm:"type:jsonb"                                     json:"meta,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"           json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }
