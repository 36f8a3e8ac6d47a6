package workflow

import (
	"fmt"

	pkgerrors "depothub/pkg/errors"
)

// edge 状态图中的一条有向边，携带允许触发该流转的角色集合
type edge struct {
	to    State
	roles []Role
}

// transitions 唯一的状态流转表。
// 新增状态或角色只改这里，各业务模块一律通过 CanTransition / Validate 查询。
// SYSTEM_ADMIN 对所有边隐式放行（见 roleAllowed）。
var transitions = map[State][]edge{
	StatePending: {
		{to: StateReceived, roles: []Role{RoleSaleAdmin}},
		{to: StateRejected, roles: []Role{RoleSaleAdmin}},
		{to: StateCancelled, roles: []Role{RoleCustomerAdmin, RoleCustomerUser}},
	},
	StateReceived: {
		{to: StateScheduled, roles: []Role{RoleSaleAdmin}},
		{to: StateRejected, roles: []Role{RoleSaleAdmin}},
	},
	StateScheduled: {
		{to: StateScheduledInfoAdded, roles: []Role{RoleCustomerAdmin, RoleCustomerUser}},
		{to: StateForwarded, roles: []Role{RoleCustomerAdmin, RoleCustomerUser, RoleSaleAdmin}},
		{to: StateCancelled, roles: []Role{RoleCustomerAdmin, RoleCustomerUser}},
	},
	StateScheduledInfoAdded: {
		{to: StateForwarded, roles: []Role{RoleSaleAdmin}},
	},
	StateForwarded: {
		{to: StateSentToGate, roles: []Role{RoleSaleAdmin}},
		{to: StateGateIn, roles: []Role{RoleGateStaff}},
		{to: StateGateOut, roles: []Role{RoleGateStaff}},
		{to: StateGateRejected, roles: []Role{RoleGateStaff}},
	},
	StateSentToGate: {
		{to: StateGateIn, roles: []Role{RoleGateStaff}},
		{to: StateGateOut, roles: []Role{RoleGateStaff}},
		{to: StateGateRejected, roles: []Role{RoleGateStaff}},
	},
	StateGateRejected: {
		{to: StateForwarded, roles: []Role{RoleSaleAdmin}},
	},
	StateGateIn: {
		{to: StateInYard, roles: []Role{RoleYardStaff}},
		{to: StateChecking, roles: []Role{RoleMaintenanceStaff}},
	},
	StateInYard: {
		{to: StateChecking, roles: []Role{RoleMaintenanceStaff}},
	},
	StateChecking: {
		{to: StateChecked, roles: []Role{RoleMaintenanceStaff}},
		{to: StatePendingAccept, roles: []Role{RoleMaintenanceStaff}},
	},
	StatePendingAccept: {
		{to: StateApproved, roles: []Role{RoleCustomerAdmin, RoleCustomerUser}},
		{to: StateCheckingConfirm, roles: []Role{RoleCustomerAdmin, RoleCustomerUser}},
	},
	StateCheckingConfirm: {
		{to: StateChecking, roles: []Role{RoleMaintenanceStaff}},
	},
	StateApproved: {
		{to: StateRepairing, roles: []Role{RoleMaintenanceStaff}},
		{to: StateInProgress, roles: []Role{RoleSaleAdmin}},
	},
	StateRepairing: {
		{to: StateChecked, roles: []Role{RoleMaintenanceStaff}},
	},
	StateChecked: {
		{to: StateInProgress, roles: []Role{RoleSaleAdmin}},
	},
	StateInProgress: {
		{to: StateCompleted, roles: []Role{RoleAccountant}},
	},
	StateGateOut: {
		{to: StateExported, roles: []Role{RoleGateStaff}},
		{to: StateLeftYard, roles: []Role{RoleYardStaff}},
	},
}

func roleAllowed(roles []Role, role Role) bool {
	if role == RoleSystemAdmin {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanTransition 判断 (from → to) 是否存在于状态图且 role 有权触发
func CanTransition(from, to State, role Role) bool {
	for _, e := range transitions[from] {
		if e.to == to {
			return roleAllowed(e.roles, role)
		}
	}
	return false
}

// Validate 校验流转并区分失败原因：
// 边不存在 → INVALID_STATE；边存在但角色不在许可集合 → PERMISSION_DENIED。
func Validate(from, to State, role Role) error {
	if !IsKnownState(from) || !IsKnownState(to) {
		return pkgerrors.InvalidState("REQUEST", fmt.Sprintf("未知状态 %s → %s", from, to))
	}
	for _, e := range transitions[from] {
		if e.to == to {
			if roleAllowed(e.roles, role) {
				return nil
			}
			return pkgerrors.PermissionDenied("REQUEST",
				fmt.Sprintf("角色 %s 无权执行 %s → %s", role, from, to))
		}
	}
	return pkgerrors.InvalidState("REQUEST", fmt.Sprintf("不允许的流转 %s → %s", from, to))
}

// GetValidTransitions 返回当前状态下指定角色可触发的全部目标状态
func GetValidTransitions(from State, role Role) []State {
	var out []State
	for _, e := range transitions[from] {
		if roleAllowed(e.roles, role) {
			out = append(out, e.to)
		}
	}
	return out
}
