package model

// DocumentFile 请求单据表 — 对应 document_files
// 文件本体由对象存储保存（见 pkg/storage），这里只记录元数据。
type DocumentFile struct {
	DocumentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"document_id"`
	RequestID  string `gorm:"type:uuid;not null;index"                       json:"request_id"`
	Type       string `gorm:"type:varchar(30);not null"                      json:"type"` // SUPPLEMENT | EIR | REPAIR_QUOTE | INVOICE | PHOTO
	FileName   string `gorm:"type:varchar(255);not null"                     json:"file_name"`
	StorageKey string `gorm:"type:varchar(500);not null"                     json:"storage_key"`
	SizeBytes  int64  `gorm:"not null;default:0"                             json:"size_bytes"`
	MimeType   string `gorm:"type:varchar(100)"                              json:"mime_type,omitempty"`

	SoftDeleteModel
}

// TableName 指定表名
func (DocumentFile) TableName() string { return "document_files" }
