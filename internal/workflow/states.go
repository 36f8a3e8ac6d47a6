package workflow

// State 服务请求状态（持久化为字符串，不可改名）
type State string

const (
	StatePending            State = "PENDING"              // 客户已提交，等待销售受理
	StateReceived           State = "RECEIVED"             // 销售已受理
	StateScheduled          State = "SCHEDULED"            // 已排期（预约时间已定）
	StateScheduledInfoAdded State = "SCHEDULED_INFO_ADDED" // 客户已补充预约信息
	StateForwarded          State = "FORWARDED"            // 已转发至闸口
	StateSentToGate         State = "SENT_TO_GATE"         // 已派发闸口队列
	StateGateIn             State = "GATE_IN"              // 进闸（进口/转换）
	StateGateOut            State = "GATE_OUT"             // 出闸（出口）
	StateGateRejected       State = "GATE_REJECTED"        // 闸口拒绝
	StateChecking           State = "CHECKING"             // 维修检查中
	StateChecked            State = "CHECKED"              // 检查/维修完成
	StateCheckingConfirm    State = "CHECKING_CONFIRM"     // 客户要求复检
	StateRepairing          State = "REPAIRING"            // 维修中
	StatePendingAccept      State = "PENDING_ACCEPT"       // 维修报价待客户确认
	StateApproved           State = "APPROVED"             // 客户已确认报价
	StateInProgress         State = "IN_PROGRESS"          // 作业/结算进行中
	StateCompleted          State = "COMPLETED"            // 已完成（财务已结清）
	StateExported           State = "EXPORTED"             // 已出口离场
	StateInYard             State = "IN_YARD"              // 已入堆场
	StateLeftYard           State = "LEFT_YARD"            // 已离开堆场
	StateRejected           State = "REJECTED"             // 已拒绝
	StateCancelled          State = "CANCELLED"            // 已取消
)

// Role 操作角色（与 JWT claims 中的 role 字符串一致）
type Role string

const (
	RoleCustomerAdmin    Role = "CUSTOMER_ADMIN"
	RoleCustomerUser     Role = "CUSTOMER_USER"
	RoleSaleAdmin        Role = "SALE_ADMIN"
	RoleGateStaff        Role = "GATE_STAFF"
	RoleYardStaff        Role = "YARD_STAFF"
	RoleMaintenanceStaff Role = "MAINTENANCE_STAFF"
	RoleAccountant       Role = "ACCOUNTANT"
	RoleSystemAdmin      Role = "SYSTEM_ADMIN"
)

// StateInfo 状态展示元数据
type StateInfo struct {
	Description string `json:"description"`
	ColorHint   string `json:"color_hint"`
	Terminal    bool   `json:"terminal"`
}

// stateInfos 每个状态的展示信息。
// Terminal=true 的状态为软终态：之后只允许按范围软删除，不允许任何前向流转。
var stateInfos = map[State]StateInfo{
	StatePending:            {Description: "待受理", ColorHint: "gray"},
	StateReceived:           {Description: "已受理", ColorHint: "blue"},
	StateScheduled:          {Description: "已排期", ColorHint: "blue"},
	StateScheduledInfoAdded: {Description: "已补充预约信息", ColorHint: "blue"},
	StateForwarded:          {Description: "已转发闸口", ColorHint: "cyan"},
	StateSentToGate:         {Description: "已派发闸口", ColorHint: "cyan"},
	StateGateIn:             {Description: "已进闸", ColorHint: "green"},
	StateGateOut:            {Description: "已出闸", ColorHint: "green"},
	StateGateRejected:       {Description: "闸口拒绝", ColorHint: "orange"},
	StateChecking:           {Description: "检查中", ColorHint: "purple"},
	StateChecked:            {Description: "检查完成", ColorHint: "purple"},
	StateCheckingConfirm:    {Description: "待复检确认", ColorHint: "purple"},
	StateRepairing:          {Description: "维修中", ColorHint: "purple"},
	StatePendingAccept:      {Description: "报价待确认", ColorHint: "yellow"},
	StateApproved:           {Description: "报价已确认", ColorHint: "green"},
	StateInProgress:         {Description: "作业进行中", ColorHint: "blue"},
	StateCompleted:          {Description: "已完成", ColorHint: "green", Terminal: true},
	StateExported:           {Description: "已出口离场", ColorHint: "green", Terminal: true},
	StateInYard:             {Description: "在堆场", ColorHint: "cyan"},
	StateLeftYard:           {Description: "已离场", ColorHint: "green", Terminal: true},
	StateRejected:           {Description: "已拒绝", ColorHint: "red", Terminal: true},
	StateCancelled:          {Description: "已取消", ColorHint: "red", Terminal: true},
}

// GetStateInfo 返回状态的展示元数据；未知状态 ok=false
func GetStateInfo(s State) (StateInfo, bool) {
	info, ok := stateInfos[s]
	return info, ok
}

// IsKnownState 判断是否为状态图中的合法状态
func IsKnownState(s State) bool {
	_, ok := stateInfos[s]
	return ok
}

// IsTerminal 判断是否为软终态
func IsTerminal(s State) bool {
	return stateInfos[s].Terminal
}
