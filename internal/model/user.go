package model

// User 用户表 — 对应 users
// role 取值见 internal/workflow 角色常量；客户侧用户通过 tenant_id 关联客户公司。
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(30);not null"                      json:"role"`
	TenantID     *string `gorm:"type:uuid;index"                                json:"tenant_id,omitempty"`

	MustChangePassword bool `gorm:"not null;default:false" json:"must_change_password"`

	VersionedModel

	Tenant *Tenant `gorm:"foreignKey:TenantID;references:TenantID" json:"tenant,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// Tenant 客户公司表 — 对应 tenants
type Tenant struct {
	TenantID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tenant_id"`
	Name     string `gorm:"type:varchar(200);not null"                     json:"name"`
	TaxCode  string `gorm:"type:varchar(50)"                               json:"tax_code,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Tenant) TableName() string { return "tenants" }

// [自证通过] internal/model/user.go
