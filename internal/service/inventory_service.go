package service

import (
	"context"

	"go.uber.org/zap"

	"depothub/internal/dto"
	"depothub/internal/model"
	"depothub/internal/repository"
	pkgerrors "depothub/pkg/errors"
)

// InventoryService 备件库存业务接口。
// 出库只发生在维修审批事务内（见 RepairService.Approve），这里只提供入库与查询。
type InventoryService interface {
	CreateItem(ctx context.Context, actor Actor, req *dto.CreateInventoryItemRequest) (*model.InventoryItem, error)
	Get(ctx context.Context, id string) (*model.InventoryItem, error)
	List(ctx context.Context, req *dto.InventoryListRequest) ([]model.InventoryItem, int64, error)
	AdjustIn(ctx context.Context, actor Actor, itemID string, req *dto.AdjustInRequest) (*model.InventoryItem, error)
	Movements(ctx context.Context, itemID string, page, pageSize int) ([]model.InventoryMovement, int64, error)
}

type inventoryService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
}

// NewInventoryService 创建 InventoryService 实例
func NewInventoryService(repo *repository.Repository, audit AuditService, logger *zap.Logger) InventoryService {
	return &inventoryService{repo: repo, audit: audit, logger: logger}
}

func (s *inventoryService) CreateItem(ctx context.Context, actor Actor, req *dto.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	if req.Code == "" || req.Name == "" {
		return nil, pkgerrors.Validation("备件编码与名称不能为空")
	}
	item := &model.InventoryItem{
		Code:         req.Code,
		Name:         req.Name,
		Unit:         req.Unit,
		ReorderPoint: req.ReorderPoint,
		UnitPrice:    req.UnitPrice,
		VersionedModel: model.VersionedModel{
			SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &actor.ID}},
		},
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if err := s.repo.Inventory.Create(ctx, item); err != nil {
		s.logger.Error("创建备件失败", zap.Error(err))
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, "ITEM.CREATED", "ITEM", item.InvItemID,
		model.JSONMap{"code": item.Code})
	return item, nil
}

func (s *inventoryService) Get(ctx context.Context, id string) (*model.InventoryItem, error) {
	item, err := s.repo.Inventory.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "ITEM", id)
	}
	return item, nil
}

func (s *inventoryService) List(ctx context.Context, req *dto.InventoryListRequest) ([]model.InventoryItem, int64, error) {
	params := repository.InventoryListParams{
		Keyword:  req.Keyword,
		LowStock: req.LowStock,
		Offset:   (req.Page - 1) * req.PageSize,
		Limit:    req.PageSize,
	}
	return s.repo.Inventory.List(ctx, params)
}

func (s *inventoryService) AdjustIn(ctx context.Context, actor Actor, itemID string, req *dto.AdjustInRequest) (*model.InventoryItem, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.Validation("入库数量必须为正")
	}
	item, err := s.repo.Inventory.AdjustIn(ctx, itemID, req.Quantity, req.Note, actor.ID)
	if err != nil {
		return nil, translateNotFound(err, "ITEM", itemID)
	}
	s.audit.Record(ctx, actor.ID, "ITEM.STOCK_IN", "ITEM", itemID,
		model.JSONMap{"quantity": req.Quantity, "note": req.Note})
	return item, nil
}

func (s *inventoryService) Movements(ctx context.Context, itemID string, page, pageSize int) ([]model.InventoryMovement, int64, error) {
	if _, err := s.repo.Inventory.GetByID(ctx, itemID); err != nil {
		return nil, 0, translateNotFound(err, "ITEM", itemID)
	}
	offset := (page - 1) * pageSize
	return s.repo.Inventory.ListMovements(ctx, itemID, offset, pageSize)
}
