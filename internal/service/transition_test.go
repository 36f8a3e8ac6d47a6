package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"depothub/internal/model"
	"depothub/internal/workflow"
	pkgerrors "depothub/pkg/errors"
)

func newTestExecutor(env *testEnv) *TransitionExecutor {
	audit := NewAuditService(env.audit, zap.NewNop())
	return NewTransitionExecutor(env.repo, audit, zap.NewNop())
}

var (
	saleActor     = Actor{ID: "user-sale", Role: workflow.RoleSaleAdmin}
	customerActor = Actor{ID: "user-customer", Role: workflow.RoleCustomerUser}
	gateActor     = Actor{ID: "user-gate", Role: workflow.RoleGateStaff}
	accountant    = Actor{ID: "user-accountant", Role: workflow.RoleAccountant}
	adminActor    = Actor{ID: "user-admin", Role: workflow.RoleSystemAdmin}
)

func TestExecuteSuccess(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	req := env.seedRequest(string(workflow.StatePending), model.RequestTypeImport)

	got, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StatePending, workflow.StateReceived, TransitionOptions{Reason: "受理"})
	if err != nil {
		t.Fatalf("流转失败: %v", err)
	}
	if got.Status != string(workflow.StateReceived) {
		t.Errorf("期望状态 RECEIVED，实际 %s", got.Status)
	}
	if got.Version != 2 {
		t.Errorf("期望 version=2，实际 %d", got.Version)
	}

	hist := env.request.historyFor(req.RequestID)
	if len(hist) != 1 {
		t.Fatalf("期望 1 条历史，实际 %d", len(hist))
	}
	if hist[0].Action != string(workflow.StateReceived) {
		t.Errorf("期望历史 Action=RECEIVED，实际 %s", hist[0].Action)
	}
	if hist[0].ActorID != saleActor.ID || hist[0].ActorRole != string(workflow.RoleSaleAdmin) {
		t.Errorf("历史操作人不符: %s / %s", hist[0].ActorID, hist[0].ActorRole)
	}

	audits := env.audit.entriesFor("REQUEST", req.RequestID)
	if len(audits) != 1 {
		t.Fatalf("期望 1 条审计，实际 %d", len(audits))
	}
	if audits[0].Action != "REQUEST.RECEIVED" {
		t.Errorf("期望审计 Action=REQUEST.RECEIVED，实际 %s", audits[0].Action)
	}
}

func TestExecuteUnknownEdge(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	req := env.seedRequest(string(workflow.StatePending), model.RequestTypeImport)

	_, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StatePending, workflow.StateGateIn, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("期望 INVALID_STATE，实际 %v", err)
	}

	// 失败不产生任何写入
	stored := env.request.requests[req.RequestID]
	if stored.Status != string(workflow.StatePending) || stored.Version != 1 {
		t.Errorf("状态不应改变: %s v%d", stored.Status, stored.Version)
	}
	if len(env.request.historyFor(req.RequestID)) != 0 {
		t.Error("失败流转不应追加历史")
	}
	if len(env.audit.entriesFor("REQUEST", req.RequestID)) != 0 {
		t.Error("失败流转不应写入审计")
	}
}

func TestExecuteRoleDenied(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	req := env.seedRequest(string(workflow.StatePending), model.RequestTypeImport)

	_, err := exec.Execute(context.Background(), customerActor, req.RequestID,
		workflow.StatePending, workflow.StateReceived, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindPermissionDenied) {
		t.Fatalf("期望 PERMISSION_DENIED，实际 %v", err)
	}
	if len(env.request.historyFor(req.RequestID)) != 0 {
		t.Error("越权流转不应追加历史")
	}
}

func TestExecuteSystemAdminBypass(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	req := env.seedRequest(string(workflow.StatePending), model.RequestTypeImport)

	if _, err := exec.Execute(context.Background(), adminActor, req.RequestID,
		workflow.StatePending, workflow.StateReceived, TransitionOptions{}); err != nil {
		t.Fatalf("SYSTEM_ADMIN 应放行任意边: %v", err)
	}
}

func TestExecuteStaleObservedState(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	req := env.seedRequest(string(workflow.StateReceived), model.RequestTypeImport)

	// 调用方观察到的 fromState 已过期
	_, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StatePending, workflow.StateReceived, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("期望 INVALID_STATE，实际 %v", err)
	}
}

func TestExecuteNotFound(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)

	_, err := exec.Execute(context.Background(), saleActor, "missing",
		workflow.StatePending, workflow.StateReceived, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindNotFound) {
		t.Fatalf("期望 NOT_FOUND，实际 %v", err)
	}
}

func TestExecuteScheduledGuard(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	req := env.seedRequest(string(workflow.StateReceived), model.RequestTypeImport)

	// 无预约时间
	_, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StateReceived, workflow.StateScheduled, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("缺预约时间应拒绝，实际 %v", err)
	}

	// 过去的预约时间
	past := time.Now().Add(-time.Hour)
	_, err = exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StateReceived, workflow.StateScheduled, TransitionOptions{AppointmentTime: &past})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("过期预约时间应拒绝，实际 %v", err)
	}

	// 未来的预约时间
	future := time.Now().Add(24 * time.Hour)
	got, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StateReceived, workflow.StateScheduled, TransitionOptions{AppointmentTime: &future})
	if err != nil {
		t.Fatalf("排期失败: %v", err)
	}
	if got.Status != string(workflow.StateScheduled) {
		t.Errorf("期望状态 SCHEDULED，实际 %s", got.Status)
	}
	stored := env.request.requests[req.RequestID]
	if stored.AppointmentTime == nil || !stored.AppointmentTime.Equal(future) {
		t.Error("预约时间未随状态落库")
	}
}

func TestExecuteScheduledInfoAddedGuard(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)

	// 预约已过期：客户不能再补充信息，需先改期
	req := env.seedRequest(string(workflow.StateScheduled), model.RequestTypeImport)
	past := time.Now().Add(-time.Hour)
	env.request.requests[req.RequestID].AppointmentTime = &past

	_, err := exec.Execute(context.Background(), customerActor, req.RequestID,
		workflow.StateScheduled, workflow.StateScheduledInfoAdded, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("过期预约应拒绝补充信息，实际 %v", err)
	}

	future := time.Now().Add(time.Hour)
	env.request.requests[req.RequestID].AppointmentTime = &future
	if _, err := exec.Execute(context.Background(), customerActor, req.RequestID,
		workflow.StateScheduled, workflow.StateScheduledInfoAdded, TransitionOptions{}); err != nil {
		t.Fatalf("补充信息失败: %v", err)
	}
}

func TestExecuteGateDirectionGuard(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)

	// 出口请求不能走 GATE_IN
	exp := env.seedRequest(string(workflow.StateForwarded), model.RequestTypeExport)
	_, err := exec.Execute(context.Background(), gateActor, exp.RequestID,
		workflow.StateForwarded, workflow.StateGateIn, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("出口请求走 GATE_IN 应拒绝，实际 %v", err)
	}
	if _, err := exec.Execute(context.Background(), gateActor, exp.RequestID,
		workflow.StateForwarded, workflow.StateGateOut, TransitionOptions{}); err != nil {
		t.Fatalf("出口请求走 GATE_OUT 失败: %v", err)
	}

	// 进口请求不能走 GATE_OUT
	imp := env.seedRequest(string(workflow.StateForwarded), model.RequestTypeImport)
	_, err = exec.Execute(context.Background(), gateActor, imp.RequestID,
		workflow.StateForwarded, workflow.StateGateOut, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("进口请求走 GATE_OUT 应拒绝，实际 %v", err)
	}
}

func TestExecuteCompletedRequiresNoUnpaid(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	req := env.seedRequest(string(workflow.StateInProgress), model.RequestTypeImport)

	payment := &model.PaymentRequest{RequestID: req.RequestID, Amount: 500}
	if err := env.payment.Create(context.Background(), payment); err != nil {
		t.Fatal(err)
	}

	_, err := exec.Execute(context.Background(), accountant, req.RequestID,
		workflow.StateInProgress, workflow.StateCompleted, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("有未支付付款请求应拒绝结案，实际 %v", err)
	}

	if err := env.payment.MarkPaid(context.Background(), payment, accountant.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := exec.Execute(context.Background(), accountant, req.RequestID,
		workflow.StateInProgress, workflow.StateCompleted, TransitionOptions{}); err != nil {
		t.Fatalf("付款结清后结案失败: %v", err)
	}
}

func TestExecuteOptimisticLock(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	req := env.seedRequest(string(workflow.StatePending), model.RequestTypeImport)

	// 校验与写入之间被并发流转抢先
	env.request.conflictOnce = true
	_, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StatePending, workflow.StateReceived, TransitionOptions{})
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Fatalf("乐观锁冲突应映射为 INVALID_STATE，实际 %v", err)
	}
	if len(env.request.historyFor(req.RequestID)) != 0 {
		t.Error("冲突流转不应追加历史")
	}
	if len(env.audit.entriesFor("REQUEST", req.RequestID)) != 0 {
		t.Error("冲突流转不应写入审计")
	}
}

func TestExecuteEnsuresRoomOnScheduled(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	chat := NewChatService(env.repo, nil, zap.NewNop())
	exec.SetRoomEnsurer(chat)

	req := env.seedRequest(string(workflow.StateReceived), model.RequestTypeImport)
	future := time.Now().Add(24 * time.Hour)
	if _, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StateReceived, workflow.StateScheduled, TransitionOptions{AppointmentTime: &future}); err != nil {
		t.Fatalf("排期失败: %v", err)
	}
	if _, ok := env.chat.rooms[req.RequestID]; !ok {
		t.Error("进入 SCHEDULED 后应自动创建聊天室")
	}
}

func TestExecuteRoomFailureDoesNotBlockTransition(t *testing.T) {
	env := newTestEnv()
	exec := newTestExecutor(env)
	chat := NewChatService(env.repo, nil, zap.NewNop())
	exec.SetRoomEnsurer(chat)
	env.chat.createRoomErr = errors.New("chat store down")

	req := env.seedRequest(string(workflow.StateReceived), model.RequestTypeImport)
	future := time.Now().Add(24 * time.Hour)
	got, err := exec.Execute(context.Background(), saleActor, req.RequestID,
		workflow.StateReceived, workflow.StateScheduled, TransitionOptions{AppointmentTime: &future})
	if err != nil {
		t.Fatalf("聊天室失败不应影响流转结果: %v", err)
	}
	if got.Status != string(workflow.StateScheduled) {
		t.Errorf("期望状态 SCHEDULED，实际 %s", got.Status)
	}
}
