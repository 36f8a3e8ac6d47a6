package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"depothub/internal/dto"
	"depothub/internal/model"
	"depothub/internal/workflow"
	pkgerrors "depothub/pkg/errors"
)

var (
	maintenanceActor = Actor{ID: "user-maintenance", Role: workflow.RoleMaintenanceStaff}
)

func newTestRepairService(env *testEnv) RepairService {
	audit := NewAuditService(env.audit, zap.NewNop())
	exec := NewTransitionExecutor(env.repo, audit, zap.NewNop())
	return NewRepairService(env.repo, exec, audit, zap.NewNop())
}

// seedItem 预置备件库存
func (env *testEnv) seedItem(code string, qty int, price float64) *model.InventoryItem {
	item := &model.InventoryItem{
		Code: code, Name: "测试备件 " + code, Unit: "pcs",
		QtyOnHand: qty, UnitPrice: price,
	}
	_ = env.inventory.Create(context.Background(), item)
	return item
}

func TestRepairCreateTicket(t *testing.T) {
	env := newTestEnv()
	svc := newTestRepairService(env)
	req := env.seedRequest(string(workflow.StateGateIn), model.RequestTypeImport)
	item := env.seedItem("PANEL-01", 10, 120)

	ticket, err := svc.CreateTicket(context.Background(), maintenanceActor, &dto.CreateRepairTicketRequest{
		RequestID:          req.RequestID,
		ProblemDescription: "右侧板凹陷",
		LaborCost:          200,
		Items:              []dto.RepairItemInput{{InventoryItemID: item.InvItemID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}
	if ticket.Status != model.RepairStatusChecking {
		t.Errorf("期望工单状态 CHECKING，实际 %s", ticket.Status)
	}
	if ticket.RequestID != req.RequestID || ticket.ContainerNo != req.ContainerNo {
		t.Error("工单应显式捕获所属请求")
	}
	// 预估费用 = 人工费 + 单价×数量
	if ticket.EstimatedCost != 200+2*120 {
		t.Errorf("期望预估费用 440，实际 %v", ticket.EstimatedCost)
	}

	// 建单时不扣库存
	if env.inventory.items[item.InvItemID].QtyOnHand != 10 {
		t.Error("建单阶段不应扣减库存")
	}

	// 所属请求流转到 CHECKING
	if env.request.requests[req.RequestID].Status != string(workflow.StateChecking) {
		t.Errorf("请求应进入 CHECKING，实际 %s", env.request.requests[req.RequestID].Status)
	}
}

func TestRepairCreateTicketStateGuard(t *testing.T) {
	env := newTestEnv()
	svc := newTestRepairService(env)
	req := env.seedRequest(string(workflow.StateScheduled), model.RequestTypeImport)

	_, err := svc.CreateTicket(context.Background(), maintenanceActor, &dto.CreateRepairTicketRequest{
		RequestID:          req.RequestID,
		ProblemDescription: "划痕",
	})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("SCHEDULED 下建单应拒绝，实际 %v", err)
	}
}

func TestRepairApproveDeductsStock(t *testing.T) {
	env := newTestEnv()
	svc := newTestRepairService(env)
	req := env.seedRequest(string(workflow.StateGateIn), model.RequestTypeImport)
	item := env.seedItem("PANEL-01", 5, 100)

	ticket, err := svc.CreateTicket(context.Background(), maintenanceActor, &dto.CreateRepairTicketRequest{
		RequestID: req.RequestID,
		LaborCost: 50,
		Items:     []dto.RepairItemInput{{InventoryItemID: item.InvItemID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}

	got, err := svc.Approve(context.Background(), maintenanceActor, ticket.TicketID, "同意维修")
	if err != nil {
		t.Fatalf("审批失败: %v", err)
	}
	if got.Status != model.RepairStatusPendingAccept {
		t.Errorf("期望工单状态 PENDING_ACCEPT，实际 %s", got.Status)
	}
	if env.inventory.items[item.InvItemID].QtyOnHand != 2 {
		t.Errorf("库存应扣减至 2，实际 %d", env.inventory.items[item.InvItemID].QtyOnHand)
	}

	// 扣减伴随 OUT 流水且指向工单
	movements, _, _ := env.inventory.ListMovements(context.Background(), item.InvItemID, 0, 10)
	if len(movements) != 1 || movements[0].Type != model.MovementOut {
		t.Fatalf("期望 1 条 OUT 流水，实际 %v", movements)
	}
	if movements[0].RefTicketID == nil || *movements[0].RefTicketID != ticket.TicketID {
		t.Error("OUT 流水应指向消耗它的工单")
	}

	// 请求回写 CHECKING → PENDING_ACCEPT
	if env.request.requests[req.RequestID].Status != string(workflow.StatePendingAccept) {
		t.Errorf("请求应进入 PENDING_ACCEPT，实际 %s", env.request.requests[req.RequestID].Status)
	}
}

func TestRepairApproveInsufficientStock(t *testing.T) {
	env := newTestEnv()
	svc := newTestRepairService(env)
	req := env.seedRequest(string(workflow.StateGateIn), model.RequestTypeImport)
	enough := env.seedItem("PANEL-01", 10, 100)
	scarce := env.seedItem("HINGE-02", 1, 30)

	ticket, err := svc.CreateTicket(context.Background(), maintenanceActor, &dto.CreateRepairTicketRequest{
		RequestID: req.RequestID,
		Items: []dto.RepairItemInput{
			{InventoryItemID: enough.InvItemID, Quantity: 2},
			{InventoryItemID: scarce.InvItemID, Quantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}

	_, err = svc.Approve(context.Background(), maintenanceActor, ticket.TicketID, "")
	if !pkgerrors.IsKind(err, pkgerrors.KindInsufficientStock) {
		t.Fatalf("期望 INSUFFICIENT_STOCK，实际 %v", err)
	}

	// 全有或全无：任一明细不足时不产生任何扣减
	if env.inventory.items[enough.InvItemID].QtyOnHand != 10 {
		t.Error("充足备件也不应被扣减")
	}
	if env.inventory.items[scarce.InvItemID].QtyOnHand != 1 {
		t.Error("不足备件不应被扣减")
	}
	if got, _ := env.repair.GetByID(context.Background(), ticket.TicketID); got.Status != model.RepairStatusChecking {
		t.Errorf("工单应停留在 CHECKING，实际 %s", got.Status)
	}
}

func TestRepairApproveRoleCheck(t *testing.T) {
	env := newTestEnv()
	svc := newTestRepairService(env)

	_, err := svc.Approve(context.Background(), customerActor, "ticket-1", "")
	if !pkgerrors.IsKind(err, pkgerrors.KindPermissionDenied) {
		t.Fatalf("客户角色审批应拒绝，实际 %v", err)
	}
}

func TestRepairRejectReturnsRequestToChecked(t *testing.T) {
	env := newTestEnv()
	svc := newTestRepairService(env)
	req := env.seedRequest(string(workflow.StateGateIn), model.RequestTypeImport)

	ticket, err := svc.CreateTicket(context.Background(), maintenanceActor, &dto.CreateRepairTicketRequest{
		RequestID:          req.RequestID,
		ProblemDescription: "箱门变形",
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}

	got, err := svc.Reject(context.Background(), maintenanceActor, ticket.TicketID, "无需维修")
	if err != nil {
		t.Fatalf("拒绝失败: %v", err)
	}
	if got.Status != model.RepairStatusRejected {
		t.Errorf("期望工单状态 REJECTED，实际 %s", got.Status)
	}
	if stored, _ := env.repair.GetByID(context.Background(), ticket.TicketID); stored.ReviewComment != "无需维修" {
		t.Errorf("审批意见未落库: %q", stored.ReviewComment)
	}
	// 检查流程结束：请求回到 CHECKED
	if env.request.requests[req.RequestID].Status != string(workflow.StateChecked) {
		t.Errorf("请求应回到 CHECKED，实际 %s", env.request.requests[req.RequestID].Status)
	}
}

func TestRepairQuoteLifecycle(t *testing.T) {
	env := newTestEnv()
	svc := newTestRepairService(env)
	req := env.seedRequest(string(workflow.StateGateIn), model.RequestTypeImport)
	item := env.seedItem("PANEL-01", 10, 100)

	ticket, err := svc.CreateTicket(context.Background(), maintenanceActor, &dto.CreateRepairTicketRequest{
		RequestID: req.RequestID,
		Items:     []dto.RepairItemInput{{InventoryItemID: item.InvItemID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}
	if _, err := svc.Approve(context.Background(), maintenanceActor, ticket.TicketID, "报价 100"); err != nil {
		t.Fatalf("审批失败: %v", err)
	}

	// 客户确认报价：工单 → REPAIRING，请求 → APPROVED
	got, err := svc.AcceptQuote(context.Background(), customerActor, ticket.TicketID)
	if err != nil {
		t.Fatalf("确认报价失败: %v", err)
	}
	if got.Status != model.RepairStatusRepairing {
		t.Errorf("期望工单状态 REPAIRING，实际 %s", got.Status)
	}
	if env.request.requests[req.RequestID].Status != string(workflow.StateApproved) {
		t.Errorf("请求应进入 APPROVED，实际 %s", env.request.requests[req.RequestID].Status)
	}

	// 重复确认应拒绝
	if _, err := svc.AcceptQuote(context.Background(), customerActor, ticket.TicketID); !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("重复确认应拒绝，实际 %v", err)
	}

	// 维修完成：工单 → CHECKED，请求回写 CHECKED
	done, err := svc.Complete(context.Background(), maintenanceActor, ticket.TicketID)
	if err != nil {
		t.Fatalf("完成失败: %v", err)
	}
	if done.Status != model.RepairStatusChecked {
		t.Errorf("期望工单状态 CHECKED，实际 %s", done.Status)
	}
	if env.request.requests[req.RequestID].Status != string(workflow.StateChecked) {
		t.Errorf("请求应回写 CHECKED，实际 %s", env.request.requests[req.RequestID].Status)
	}
}
