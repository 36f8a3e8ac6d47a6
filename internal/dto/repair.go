package dto

// ── 维修模块 DTO ──

// RepairItemInput 工单用料项
type RepairItemInput struct {
	InventoryItemID string `json:"inventory_item_id" binding:"required,uuid"`
	Quantity        int    `json:"quantity"          binding:"required,min=1"`
}

// CreateRepairTicketRequest 创建维修工单（检查报价）
type CreateRepairTicketRequest struct {
	RequestID          string            `json:"request_id"          binding:"required,uuid"`
	ProblemDescription string            `json:"problem_description" binding:"omitempty,max=2000"`
	LaborCost          float64           `json:"labor_cost"          binding:"omitempty,min=0"`
	Items              []RepairItemInput `json:"items"               binding:"omitempty,dive"`
}

// RepairListRequest 工单列表查询参数
type RepairListRequest struct {
	PaginationRequest
	Status      string `form:"status"       binding:"omitempty,max=20"`
	ContainerNo string `form:"container_no" binding:"omitempty,max=20"`
	RequestID   string `form:"request_id"   binding:"omitempty,uuid"`
}

// ReviewRepairRequest 审批/拒绝工单时附带的意见
type ReviewRepairRequest struct {
	Comment string `json:"comment" binding:"omitempty,max=500"`
}
