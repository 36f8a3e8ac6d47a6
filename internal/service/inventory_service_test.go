package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"depothub/internal/dto"
	"depothub/internal/model"
	pkgerrors "depothub/pkg/errors"
)

func newTestInventoryService(env *testEnv) InventoryService {
	audit := NewAuditService(env.audit, zap.NewNop())
	return NewInventoryService(env.repo, audit, zap.NewNop())
}

func TestInventoryCreateItem(t *testing.T) {
	env := newTestEnv()
	svc := newTestInventoryService(env)

	item, err := svc.CreateItem(context.Background(), maintenanceActor, &dto.CreateInventoryItemRequest{
		Code: "PANEL-01", Name: "侧板", UnitPrice: 120,
	})
	if err != nil {
		t.Fatalf("创建备件失败: %v", err)
	}
	if item.Unit != "pcs" {
		t.Errorf("缺省单位应为 pcs，实际 %s", item.Unit)
	}
	if item.QtyOnHand != 0 {
		t.Errorf("新备件库存应为 0，实际 %d", item.QtyOnHand)
	}

	if _, err := svc.CreateItem(context.Background(), maintenanceActor, &dto.CreateInventoryItemRequest{
		Name: "缺编码",
	}); !pkgerrors.IsKind(err, pkgerrors.KindValidation) {
		t.Errorf("空编码应拒绝，实际 %v", err)
	}
}

func TestInventoryAdjustIn(t *testing.T) {
	env := newTestEnv()
	svc := newTestInventoryService(env)
	item := env.seedItem("HINGE-02", 3, 30)

	got, err := svc.AdjustIn(context.Background(), maintenanceActor, item.InvItemID, &dto.AdjustInRequest{
		Quantity: 7, Note: "月度补货",
	})
	if err != nil {
		t.Fatalf("入库失败: %v", err)
	}
	if got.QtyOnHand != 10 {
		t.Errorf("期望库存 10，实际 %d", got.QtyOnHand)
	}

	// 入库伴随 IN 流水
	movements, total, err := svc.Movements(context.Background(), item.InvItemID, 1, 10)
	if err != nil {
		t.Fatalf("流水查询失败: %v", err)
	}
	if total != 1 || movements[0].Type != model.MovementIn || movements[0].Quantity != 7 {
		t.Errorf("IN 流水不符: %+v", movements)
	}

	if _, err := svc.AdjustIn(context.Background(), maintenanceActor, item.InvItemID, &dto.AdjustInRequest{
		Quantity: 0,
	}); !pkgerrors.IsKind(err, pkgerrors.KindValidation) {
		t.Errorf("零数量入库应拒绝，实际 %v", err)
	}
	if _, err := svc.AdjustIn(context.Background(), maintenanceActor, "missing", &dto.AdjustInRequest{
		Quantity: 1,
	}); !pkgerrors.IsKind(err, pkgerrors.KindNotFound) {
		t.Errorf("备件不存在应 NOT_FOUND，实际 %v", err)
	}
}

func TestInventoryListLowStock(t *testing.T) {
	env := newTestEnv()
	svc := newTestInventoryService(env)

	low := &model.InventoryItem{Code: "SEAL-03", Name: "密封条", QtyOnHand: 1, ReorderPoint: 5}
	ok := &model.InventoryItem{Code: "PANEL-01", Name: "侧板", QtyOnHand: 20, ReorderPoint: 5}
	_ = env.inventory.Create(context.Background(), low)
	_ = env.inventory.Create(context.Background(), ok)

	req := &dto.InventoryListRequest{LowStock: true}
	req.Page, req.PageSize = 1, 20
	items, total, err := svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if total != 1 || items[0].Code != "SEAL-03" {
		t.Errorf("低库存过滤应只返回补货点以下的备件，实际 %v", items)
	}
}
