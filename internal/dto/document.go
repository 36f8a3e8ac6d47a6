package dto

// ── 单证模块 DTO ──

// RegisterDocumentRequest 登记已上传的单证
// 文件先经预签名 URL 直传对象存储，再以 storage_key 登记入库。
type RegisterDocumentRequest struct {
	RequestID  string `json:"request_id"  binding:"required,uuid"`
	Type       string `json:"type"        binding:"required,oneof=SUPPLEMENT EIR REPAIR_QUOTE INVOICE PHOTO"`
	FileName   string `json:"file_name"   binding:"required,max=255"`
	StorageKey string `json:"storage_key" binding:"required,max=512"`
	SizeBytes  int64  `json:"size_bytes"  binding:"omitempty,min=0"`
	MimeType   string `json:"mime_type"   binding:"omitempty,max=100"`
}

// PresignUploadRequest 申请上传预签名 URL
type PresignUploadRequest struct {
	RequestID string `json:"request_id" binding:"required,uuid"`
	Type      string `json:"type"       binding:"required,oneof=SUPPLEMENT EIR REPAIR_QUOTE INVOICE PHOTO"`
	FileName  string `json:"file_name"  binding:"required,max=255"`
}

// PresignResponse 预签名 URL 响应
type PresignResponse struct {
	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`
}
