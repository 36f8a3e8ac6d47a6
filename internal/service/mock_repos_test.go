package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"depothub/internal/model"
	"depothub/internal/repository"
	pkgerrors "depothub/pkg/errors"
)

// 纯内存 map 实现的 Repository 替身，覆盖服务层测试需要的行为：
// 查不到返回 gorm.ErrRecordNotFound，CAS 语义与真实实现一致。

// ── RequestRepository ──

type mockRequestRepo struct {
	requests map[string]*model.ServiceRequest
	history  []model.RequestHistory
	seq      int64 // 模拟数据库序列：历史条目的写入序号

	// 置位后下一次 TransitionStatus 前偷偷抬高 version，模拟并发抢先
	conflictOnce bool
}

// record 仿照数据库序列为历史条目分配单调递增的 seq
func (m *mockRequestRepo) record(hist *model.RequestHistory) {
	m.seq++
	hist.Seq = m.seq
	m.history = append(m.history, *hist)
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: map[string]*model.ServiceRequest{}}
}

func (m *mockRequestRepo) Create(_ context.Context, req *model.ServiceRequest, hist *model.RequestHistory) error {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Version == 0 {
		req.Version = 1
	}
	stored := *req
	m.requests[req.RequestID] = &stored
	hist.RequestID = req.RequestID
	m.record(hist)
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.ServiceRequest, error) {
	stored, ok := m.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *stored
	return &cp, nil
}

func (m *mockRequestRepo) List(_ context.Context, params repository.RequestListParams) ([]model.ServiceRequest, int64, error) {
	var out []model.ServiceRequest
	for _, r := range m.requests {
		if params.TenantID != "" && r.TenantID != params.TenantID {
			continue
		}
		if params.Status != "" && r.Status != params.Status {
			continue
		}
		if params.Type != "" && r.Type != params.Type {
			continue
		}
		if params.Scope == repository.ScopeCustomer && r.CustomerDeletedAt != nil {
			continue
		}
		if params.Scope == repository.ScopeDepot && r.DepotDeletedAt != nil {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *mockRequestRepo) TransitionStatus(_ context.Context, req *model.ServiceRequest, toStatus string, extra map[string]interface{}, hist *model.RequestHistory) error {
	stored, ok := m.requests[req.RequestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if m.conflictOnce {
		stored.Version++
		m.conflictOnce = false
	}
	if stored.Status != req.Status || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = toStatus
	stored.Version++
	for k, v := range extra {
		switch k {
		case "appointment_time":
			if t, ok := v.(*time.Time); ok {
				stored.AppointmentTime = t
			}
		case "appointment_loc_type":
			if s, ok := v.(string); ok {
				stored.AppointmentLocType = s
			}
		case "appointment_note":
			if s, ok := v.(string); ok {
				stored.AppointmentNote = s
			}
		case "rejected_reason":
			if s, ok := v.(string); ok {
				stored.RejectedReason = s
			}
		case "rejected_by":
			if s, ok := v.(string); ok {
				stored.RejectedBy = &s
			}
		case "rejected_at":
			if t, ok := v.(*time.Time); ok {
				stored.RejectedAt = t
			}
		case "locked_attachments":
			if b, ok := v.(bool); ok {
				stored.LockedAttachments = b
			}
		}
	}
	req.Status = stored.Status
	req.Version = stored.Version
	hist.RequestID = req.RequestID
	m.record(hist)
	return nil
}

func (m *mockRequestRepo) UpdateAppointment(_ context.Context, req *model.ServiceRequest) error {
	stored, ok := m.requests[req.RequestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.AppointmentTime = req.AppointmentTime
	stored.AppointmentLocType = req.AppointmentLocType
	stored.AppointmentLocID = req.AppointmentLocID
	stored.AppointmentNote = req.AppointmentNote
	return nil
}

func (m *mockRequestRepo) SetScopeDeleted(_ context.Context, id string, scope repository.VisibilityScope, deleted bool) error {
	stored, ok := m.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	var ts *time.Time
	if deleted {
		now := time.Now()
		ts = &now
	}
	if scope == repository.ScopeCustomer {
		stored.CustomerDeletedAt = ts
	} else {
		stored.DepotDeletedAt = ts
	}
	return nil
}

func (m *mockRequestRepo) SetLockedAttachments(_ context.Context, id string, locked bool) error {
	stored, ok := m.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.LockedAttachments = locked
	return nil
}

func (m *mockRequestRepo) ListHistory(_ context.Context, requestID string) ([]model.RequestHistory, error) {
	var out []model.RequestHistory
	for _, h := range m.history {
		if h.RequestID == requestID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) AppendHistory(_ context.Context, hist *model.RequestHistory) error {
	m.record(hist)
	return nil
}

// historyFor 测试断言辅助：某请求的历史条数
func (m *mockRequestRepo) historyFor(requestID string) []model.RequestHistory {
	var out []model.RequestHistory
	for _, h := range m.history {
		if h.RequestID == requestID {
			out = append(out, h)
		}
	}
	return out
}

// ── UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) ListByRoles(_ context.Context, roles []string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

// ── TenantRepository ──

type mockTenantRepo struct {
	tenants map[string]*model.Tenant
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{tenants: map[string]*model.Tenant{}}
}

func (m *mockTenantRepo) Create(_ context.Context, tenant *model.Tenant) error {
	if tenant.TenantID == "" {
		tenant.TenantID = uuid.NewString()
	}
	m.tenants[tenant.TenantID] = tenant
	return nil
}

func (m *mockTenantRepo) GetByID(_ context.Context, id string) (*model.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (m *mockTenantRepo) List(_ context.Context, _, _ int) ([]model.Tenant, int64, error) {
	var out []model.Tenant
	for _, t := range m.tenants {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

// ── DocumentRepository ──

type mockDocumentRepo struct {
	docs     map[string]*model.DocumentFile
	requests *mockRequestRepo
}

func newMockDocumentRepo(requests *mockRequestRepo) *mockDocumentRepo {
	return &mockDocumentRepo{docs: map[string]*model.DocumentFile{}, requests: requests}
}

func (m *mockDocumentRepo) Create(_ context.Context, doc *model.DocumentFile) error {
	if doc.DocumentID == "" {
		doc.DocumentID = uuid.NewString()
	}
	stored := *doc
	m.docs[doc.DocumentID] = &stored
	// 真实实现同事务累加所属请求的 documents_count
	if req, ok := m.requests.requests[doc.RequestID]; ok {
		req.DocumentsCount++
	}
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id string) (*model.DocumentFile, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockDocumentRepo) ListByRequest(_ context.Context, requestID string) ([]model.DocumentFile, error) {
	var out []model.DocumentFile
	for _, d := range m.docs {
		if d.RequestID == requestID {
			out = append(out, *d)
		}
	}
	return out, nil
}

// ── InventoryRepository ──

type mockInventoryRepo struct {
	items     map[string]*model.InventoryItem
	movements []model.InventoryMovement
}

func newMockInventoryRepo() *mockInventoryRepo {
	return &mockInventoryRepo{items: map[string]*model.InventoryItem{}}
}

func (m *mockInventoryRepo) Create(_ context.Context, item *model.InventoryItem) error {
	if item.InvItemID == "" {
		item.InvItemID = uuid.NewString()
	}
	if item.Version == 0 {
		item.Version = 1
	}
	stored := *item
	m.items[item.InvItemID] = &stored
	return nil
}

func (m *mockInventoryRepo) GetByID(_ context.Context, id string) (*model.InventoryItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *mockInventoryRepo) List(_ context.Context, params repository.InventoryListParams) ([]model.InventoryItem, int64, error) {
	var out []model.InventoryItem
	for _, it := range m.items {
		if params.LowStock && it.QtyOnHand >= it.ReorderPoint {
			continue
		}
		out = append(out, *it)
	}
	return out, int64(len(out)), nil
}

func (m *mockInventoryRepo) AdjustIn(_ context.Context, itemID string, quantity int, note, actorID string) (*model.InventoryItem, error) {
	it, ok := m.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	it.QtyOnHand += quantity
	it.Version++
	m.movements = append(m.movements, model.InventoryMovement{
		MovementID: uuid.NewString(),
		InvItemID:  itemID,
		Type:       model.MovementIn,
		Quantity:   quantity,
		Note:       note,
		ActorID:    actorID,
	})
	cp := *it
	return &cp, nil
}

func (m *mockInventoryRepo) ListMovements(_ context.Context, itemID string, _, _ int) ([]model.InventoryMovement, int64, error) {
	var out []model.InventoryMovement
	for _, mv := range m.movements {
		if mv.InvItemID == itemID {
			out = append(out, mv)
		}
	}
	return out, int64(len(out)), nil
}

// ── RepairRepository ──

type mockRepairRepo struct {
	tickets   map[string]*model.RepairTicket
	inventory *mockInventoryRepo
}

func newMockRepairRepo(inventory *mockInventoryRepo) *mockRepairRepo {
	return &mockRepairRepo{tickets: map[string]*model.RepairTicket{}, inventory: inventory}
}

func (m *mockRepairRepo) Create(_ context.Context, ticket *model.RepairTicket) error {
	if ticket.TicketID == "" {
		ticket.TicketID = uuid.NewString()
	}
	if ticket.Version == 0 {
		ticket.Version = 1
	}
	stored := *ticket
	m.tickets[ticket.TicketID] = &stored
	return nil
}

func (m *mockRepairRepo) GetByID(_ context.Context, id string) (*model.RepairTicket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepairRepo) List(_ context.Context, params repository.RepairListParams) ([]model.RepairTicket, int64, error) {
	var out []model.RepairTicket
	for _, t := range m.tickets {
		if params.Status != "" && t.Status != params.Status {
			continue
		}
		if params.RequestID != "" && t.RequestID != params.RequestID {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

// ApproveWithDeduction 与真实实现同语义：先校验全部明细的库存，
// 任一不足则整体失败且不产生任何扣减。
func (m *mockRepairRepo) ApproveWithDeduction(_ context.Context, ticketID, actorID, comment string) (*model.RepairTicket, error) {
	t, ok := m.tickets[ticketID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if t.Status != model.RepairStatusChecking {
		return nil, pkgerrors.ErrOptimisticLock
	}
	for _, item := range t.Items {
		inv, ok := m.inventory.items[item.InvItemID]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		if inv.QtyOnHand < item.Quantity {
			return nil, pkgerrors.InsufficientStock("ITEM",
				fmt.Sprintf("备件 %s 库存不足：需要 %d，现有 %d", inv.Code, item.Quantity, inv.QtyOnHand))
		}
	}
	for _, item := range t.Items {
		inv := m.inventory.items[item.InvItemID]
		inv.QtyOnHand -= item.Quantity
		inv.Version++
		m.inventory.movements = append(m.inventory.movements, model.InventoryMovement{
			MovementID:  uuid.NewString(),
			InvItemID:   item.InvItemID,
			Type:        model.MovementOut,
			Quantity:    item.Quantity,
			RefTicketID: &t.TicketID,
			ActorID:     actorID,
		})
	}
	t.Status = model.RepairStatusPendingAccept
	t.ReviewComment = comment
	t.Version++
	cp := *t
	return &cp, nil
}

func (m *mockRepairRepo) UpdateStatus(_ context.Context, ticket *model.RepairTicket, toStatus string, extra map[string]interface{}) error {
	stored, ok := m.tickets[ticket.TicketID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != ticket.Status || stored.Version != ticket.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = toStatus
	stored.Version++
	if c, ok := extra["review_comment"].(string); ok {
		stored.ReviewComment = c
	}
	ticket.Status = stored.Status
	ticket.Version = stored.Version
	return nil
}

// ── PaymentRepository ──

type mockPaymentRepo struct {
	payments map[string]*model.PaymentRequest
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: map[string]*model.PaymentRequest{}}
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *model.PaymentRequest) error {
	if payment.PaymentID == "" {
		payment.PaymentID = uuid.NewString()
	}
	if payment.Status == "" {
		payment.Status = model.PaymentStatusUnpaid
	}
	if payment.Version == 0 {
		payment.Version = 1
	}
	stored := *payment
	m.payments[payment.PaymentID] = &stored
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.PaymentRequest, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) ListByRequest(_ context.Context, requestID string) ([]model.PaymentRequest, error) {
	var out []model.PaymentRequest
	for _, p := range m.payments {
		if p.RequestID == requestID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) CountUnpaid(_ context.Context, requestID string) (int64, error) {
	var n int64
	for _, p := range m.payments {
		if p.RequestID == requestID && p.Status == model.PaymentStatusUnpaid {
			n++
		}
	}
	return n, nil
}

func (m *mockPaymentRepo) MarkPaid(_ context.Context, payment *model.PaymentRequest, actorID string) error {
	stored, ok := m.payments[payment.PaymentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != model.PaymentStatusUnpaid || stored.Version != payment.Version {
		return pkgerrors.ErrOptimisticLock
	}
	now := time.Now()
	stored.Status = model.PaymentStatusPaid
	stored.PaidAt = &now
	stored.PaidBy = &actorID
	stored.Version++
	payment.Status = stored.Status
	payment.Version = stored.Version
	return nil
}

// ── ChatRepository ──

type mockChatRepo struct {
	rooms         map[string]*model.ChatRoom // requestID → room
	messages      []model.ChatMessage
	createRoomErr error
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{rooms: map[string]*model.ChatRoom{}}
}

func (m *mockChatRepo) GetRoomByRequest(_ context.Context, requestID string) (*model.ChatRoom, error) {
	r, ok := m.rooms[requestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockChatRepo) CreateRoom(_ context.Context, room *model.ChatRoom, participantIDs []string) (*model.ChatRoom, error) {
	if m.createRoomErr != nil {
		return nil, m.createRoomErr
	}
	if existing, ok := m.rooms[room.RequestID]; ok {
		cp := *existing
		return &cp, nil
	}
	if room.RoomID == "" {
		room.RoomID = uuid.NewString()
	}
	for _, id := range participantIDs {
		room.Participants = append(room.Participants, model.ChatParticipant{RoomID: room.RoomID, UserID: id})
	}
	stored := *room
	m.rooms[room.RequestID] = &stored
	return room, nil
}

func (m *mockChatRepo) AddParticipant(_ context.Context, roomID, userID string) error {
	for _, r := range m.rooms {
		if r.RoomID == roomID {
			r.Participants = append(r.Participants, model.ChatParticipant{RoomID: roomID, UserID: userID})
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockChatRepo) CreateMessage(_ context.Context, msg *model.ChatMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockChatRepo) ListMessages(_ context.Context, roomID string, offset, limit int) ([]model.ChatMessage, int64, error) {
	var all []model.ChatMessage
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			all = append(all, msg)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── AuditRepository ──

type mockAuditRepo struct {
	entries []model.AuditLog
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	if entry.AuditID == "" {
		entry.AuditID = uuid.NewString()
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) ListByEntity(_ context.Context, entity, entityID string, _, _ int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range m.entries {
		if e.Entity == entity && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

// entriesFor 测试断言辅助
func (m *mockAuditRepo) entriesFor(entity, entityID string) []model.AuditLog {
	var out []model.AuditLog
	for _, e := range m.entries {
		if e.Entity == entity && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out
}

// ── 测试装配 ──

// testEnv 服务层测试环境：聚合全部 mock 并暴露具体类型以便断言内部状态
type testEnv struct {
	repo      *repository.Repository
	request   *mockRequestRepo
	user      *mockUserRepo
	tenant    *mockTenantRepo
	document  *mockDocumentRepo
	inventory *mockInventoryRepo
	repair    *mockRepairRepo
	payment   *mockPaymentRepo
	chat      *mockChatRepo
	audit     *mockAuditRepo
}

func newTestEnv() *testEnv {
	request := newMockRequestRepo()
	inventory := newMockInventoryRepo()
	env := &testEnv{
		request:   request,
		user:      newMockUserRepo(),
		tenant:    newMockTenantRepo(),
		document:  newMockDocumentRepo(request),
		inventory: inventory,
		repair:    newMockRepairRepo(inventory),
		payment:   newMockPaymentRepo(),
		chat:      newMockChatRepo(),
		audit:     newMockAuditRepo(),
	}
	env.repo = &repository.Repository{
		User:      env.user,
		Tenant:    env.tenant,
		Request:   env.request,
		Document:  env.document,
		Repair:    env.repair,
		Inventory: env.inventory,
		Payment:   env.payment,
		Chat:      env.chat,
		Audit:     env.audit,
	}
	return env
}

// seedRequest 预置一条处于指定状态的服务请求
func (env *testEnv) seedRequest(status, reqType string) *model.ServiceRequest {
	req := &model.ServiceRequest{
		RequestID:      uuid.NewString(),
		Type:           reqType,
		ContainerNo:    "TEMU1234567",
		Status:         status,
		TenantID:       uuid.NewString(),
		VersionedModel: model.VersionedModel{Version: 1},
	}
	env.request.requests[req.RequestID] = req
	return req
}
