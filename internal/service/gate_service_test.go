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

func newTestGateService(env *testEnv) GateService {
	audit := NewAuditService(env.audit, zap.NewNop())
	exec := NewTransitionExecutor(env.repo, audit, zap.NewNop())
	return NewGateService(env.repo, exec, zap.NewNop())
}

func TestGateApproveImport(t *testing.T) {
	env := newTestEnv()
	svc := newTestGateService(env)
	req := env.seedRequest(string(workflow.StateForwarded), model.RequestTypeImport)

	got, err := svc.Approve(context.Background(), gateActor, req.RequestID)
	if err != nil {
		t.Fatalf("放行失败: %v", err)
	}
	if got.Status != string(workflow.StateGateIn) {
		t.Errorf("进口请求期望 GATE_IN，实际 %s", got.Status)
	}
	// 进闸后客户附件锁定
	if !got.LockedAttachments || !env.request.requests[req.RequestID].LockedAttachments {
		t.Error("放行后应锁定客户附件")
	}
}

func TestGateApproveExportPicksGateOut(t *testing.T) {
	env := newTestEnv()
	svc := newTestGateService(env)
	req := env.seedRequest(string(workflow.StateForwarded), model.RequestTypeExport)

	got, err := svc.Approve(context.Background(), gateActor, req.RequestID)
	if err != nil {
		t.Fatalf("放行失败: %v", err)
	}
	if got.Status != string(workflow.StateGateOut) {
		t.Errorf("出口请求期望 GATE_OUT，实际 %s", got.Status)
	}
}

func TestGateApproveWrongState(t *testing.T) {
	env := newTestEnv()
	svc := newTestGateService(env)
	req := env.seedRequest(string(workflow.StatePending), model.RequestTypeImport)

	if _, err := svc.Approve(context.Background(), gateActor, req.RequestID); !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("非 FORWARDED 放行应拒绝，实际 %v", err)
	}
}

func TestGateReject(t *testing.T) {
	env := newTestEnv()
	svc := newTestGateService(env)
	req := env.seedRequest(string(workflow.StateForwarded), model.RequestTypeImport)

	got, err := svc.Reject(context.Background(), gateActor, req.RequestID, "箱号与预约不符")
	if err != nil {
		t.Fatalf("闸口拒绝失败: %v", err)
	}
	if got.Status != string(workflow.StateGateRejected) {
		t.Errorf("期望 GATE_REJECTED，实际 %s", got.Status)
	}
	hist := env.request.historyFor(req.RequestID)
	if len(hist) != 1 || hist[0].Reason != "箱号与预约不符" {
		t.Errorf("拒绝原因应落入历史: %+v", hist)
	}

	// 闸口拒绝后销售可重新转发
	exec := NewTransitionExecutor(env.repo,
		NewAuditService(env.audit, zap.NewNop()), zap.NewNop())
	if _, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StateGateRejected, workflow.StateForwarded, TransitionOptions{Reason: "材料已补齐"}); err != nil {
		t.Fatalf("重新转发失败: %v", err)
	}
}

func TestGateListForwarded(t *testing.T) {
	env := newTestEnv()
	svc := newTestGateService(env)
	env.seedRequest(string(workflow.StateForwarded), model.RequestTypeImport)
	env.seedRequest(string(workflow.StatePending), model.RequestTypeImport)

	req := &dto.RequestListRequest{}
	req.Page, req.PageSize = 1, 20
	items, total, err := svc.ListForwarded(context.Background(), req)
	if err != nil {
		t.Fatalf("队列查询失败: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Status != string(workflow.StateForwarded) {
		t.Errorf("闸口队列应只含 FORWARDED，实际 total=%d", total)
	}
}
