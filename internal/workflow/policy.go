package workflow

import (
	"fmt"

	pkgerrors "depothub/pkg/errors"
)

// ── 聊天准入策略 ──

// chatAllowedStates 允许发送消息的请求状态集合。
// 以 UI 层的完整列表为准（含 SCHEDULED 与 PENDING_ACCEPT）。
var chatAllowedStates = map[State]struct{}{
	StateScheduled:     {},
	StateApproved:      {},
	StatePendingAccept: {},
	StateInProgress:    {},
	StateCompleted:     {},
	StateExported:      {},
}

// IsChatAllowed 纯函数：仅依据请求当前状态判断是否允许发消息。
// 每次发送前必须重新读取最新状态再调用，不得缓存结果跨越状态变更。
func IsChatAllowed(status State) bool {
	_, ok := chatAllowedStates[status]
	return ok
}

// ── 单据上传规则 ──

// DocumentType 单据类型
type DocumentType string

const (
	DocSupplement  DocumentType = "SUPPLEMENT"   // 客户补充单据，触发自动转发
	DocEIR         DocumentType = "EIR"          // 设备交接单
	DocRepairQuote DocumentType = "REPAIR_QUOTE" // 维修报价单
	DocInvoice     DocumentType = "INVOICE"      // 发票
	DocPhoto       DocumentType = "PHOTO"        // 现场照片
)

// documentRule 某类单据允许上传的状态与角色；states 为 nil 表示任意非终态
type documentRule struct {
	states map[State]struct{}
	roles  []Role
}

var documentRules = map[DocumentType]documentRule{
	DocSupplement: {
		states: map[State]struct{}{StateScheduled: {}},
		roles:  []Role{RoleCustomerAdmin, RoleCustomerUser},
	},
	DocEIR: {
		states: map[State]struct{}{StateGateIn: {}, StateGateOut: {}},
		roles:  []Role{RoleGateStaff},
	},
	DocRepairQuote: {
		states: map[State]struct{}{StateChecking: {}, StateCheckingConfirm: {}},
		roles:  []Role{RoleMaintenanceStaff},
	},
	DocInvoice: {
		states: map[State]struct{}{StateInProgress: {}, StateCompleted: {}},
		roles:  []Role{RoleAccountant},
	},
	DocPhoto: {
		states: nil,
		roles:  []Role{RoleGateStaff, RoleYardStaff, RoleMaintenanceStaff},
	},
}

// CanUploadDocument 判断指定类型单据在当前状态下能否由该角色上传
func CanUploadDocument(docType DocumentType, status State, role Role) bool {
	return ValidateUpload(docType, status, role) == nil
}

// ValidateUpload 校验单据上传并区分失败原因：
// 类型未知或状态不符 → INVALID_STATE；状态允许但角色不符 → PERMISSION_DENIED。
func ValidateUpload(docType DocumentType, status State, role Role) error {
	rule, ok := documentRules[docType]
	if !ok {
		return pkgerrors.Validation(fmt.Sprintf("未知单据类型 %s", docType))
	}
	if rule.states == nil {
		if IsTerminal(status) {
			return pkgerrors.InvalidState("DOC",
				fmt.Sprintf("终态 %s 下不允许上传 %s", status, docType))
		}
	} else if _, ok := rule.states[status]; !ok {
		return pkgerrors.InvalidState("DOC",
			fmt.Sprintf("状态 %s 下不允许上传 %s", status, docType))
	}
	if !roleAllowed(rule.roles, role) {
		return pkgerrors.PermissionDenied("DOC",
			fmt.Sprintf("角色 %s 无权上传 %s", role, docType))
	}
	return nil
}

// TriggersAutoForward 判断该类单据在当前状态下是否触发 SCHEDULED→FORWARDED 自动转发
func TriggersAutoForward(docType DocumentType, status State) bool {
	return docType == DocSupplement && status == StateScheduled
}
