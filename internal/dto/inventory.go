package dto

// ── 库存模块 DTO ──

// CreateInventoryItemRequest 创建备件
type CreateInventoryItemRequest struct {
	Code         string  `json:"code"          binding:"required,max=50"`
	Name         string  `json:"name"          binding:"required,max=200"`
	Unit         string  `json:"unit"          binding:"omitempty,max=20"`
	ReorderPoint int     `json:"reorder_point" binding:"omitempty,min=0"`
	UnitPrice    float64 `json:"unit_price"    binding:"omitempty,min=0"`
}

// InventoryListRequest 备件列表查询参数
type InventoryListRequest struct {
	PaginationRequest
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
	LowStock bool   `form:"low_stock"`
}

// AdjustInRequest 入库请求
type AdjustInRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Note     string `json:"note"     binding:"omitempty,max=500"`
}
