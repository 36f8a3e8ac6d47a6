package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// Kind 业务错误分类。
// 所有核心错误均携带 Kind，调用方通过 KindOf 分支处理，禁止匹配错误文本。
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"          // 实体不存在
	KindInvalidState      Kind = "INVALID_STATE"      // 状态图中不存在该流转，或守卫条件未满足
	KindPermissionDenied  Kind = "PERMISSION_DENIED"  // 角色无权触发该流转
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK" // 库存不足
	KindValidation        Kind = "VALIDATION_ERROR"   // 入参不合法
	KindConflict          Kind = "CONFLICT"           // 并发冲突（乐观锁）
)

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Entity  string // 相关实体类型，如 REQUEST / REPAIR / ITEM
	Message string
	Err     error // 底层错误（可为 nil）
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Entity, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is 支持 errors.Is 按 Kind 匹配：errors.Is(err, &Error{Kind: KindNotFound})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Entity == "" || t.Entity == e.Entity)
}

// ── 构造函数 ──

// NotFound 实体不存在
func NotFound(entity, msg string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: msg}
}

// InvalidState 非法状态流转
func InvalidState(entity, msg string) *Error {
	return &Error{Kind: KindInvalidState, Entity: entity, Message: msg}
}

// PermissionDenied 角色无权限
func PermissionDenied(entity, msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Entity: entity, Message: msg}
}

// InsufficientStock 库存不足
func InsufficientStock(entity, msg string) *Error {
	return &Error{Kind: KindInsufficientStock, Entity: entity, Message: msg}
}

// Validation 入参校验失败
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict 并发冲突
func Conflict(entity, msg string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Message: msg, Err: ErrOptimisticLock}
}

// KindOf 提取错误的业务分类；非业务错误返回空串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// [自证通过] pkg/errors/errors.go
