package model

import "time"

// 库存流水方向
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// InventoryItem 维修备件库存表 — 对应 inventory_items
// qty_on_hand 永不为负；每次扣减必须伴随一条 OUT 流水。
type InventoryItem struct {
	InvItemID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"inventory_item_id"`
	Code         string  `gorm:"type:varchar(30);not null;uniqueIndex"          json:"code"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Unit         string  `gorm:"type:varchar(20);not null;default:'pcs'"        json:"unit"`
	QtyOnHand    int     `gorm:"not null;default:0"                             json:"qty_on_hand"`
	ReorderPoint int     `gorm:"not null;default:0"                             json:"reorder_point"`
	UnitPrice    float64 `gorm:"type:numeric(12,2);not null;default:0"          json:"unit_price"`

	VersionedModel
}

// TableName 指定表名
func (InventoryItem) TableName() string { return "inventory_items" }

// InventoryMovement 库存流水表 — 对应 inventory_movements
// 只追加；OUT 流水通过 ref_ticket_id 指向消耗它的维修工单。
type InventoryMovement struct {
	MovementID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"movement_id"`
	InvItemID   string  `gorm:"type:uuid;not null;index"                       json:"inventory_item_id"`
	Type        string  `gorm:"type:varchar(10);not null"                      json:"type"` // IN | OUT
	Quantity    int     `gorm:"not null"                                       json:"quantity"`
	RefTicketID *string `gorm:"type:uuid;index"                                json:"ref_ticket_id,omitempty"`
	Note        string  `gorm:"type:varchar(500)"                              json:"note,omitempty"`

	ActorID   string    `gorm:"type:uuid;not null"                 json:"actor_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (InventoryMovement) TableName() string { return "inventory_movements" }
