package model

import "time"

// ChatRoom 聊天室表 — 对应 chat_rooms
// 每个请求至多一个聊天室；能否发言不落库，
// 每次发送时按请求的最新状态实时推导。
type ChatRoom struct {
	RoomID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	RequestID string `gorm:"type:uuid;not null;uniqueIndex"                 json:"request_id"`
	BaseModel

	Participants []ChatParticipant `gorm:"foreignKey:RoomID;references:RoomID" json:"participants,omitempty"`
}

// TableName 指定表名
func (ChatRoom) TableName() string { return "chat_rooms" }

// ChatParticipant 聊天室成员表 — 对应 chat_participants
type ChatParticipant struct {
	RoomID   string    `gorm:"type:uuid;primaryKey" json:"room_id"`
	UserID   string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

// TableName 指定表名
func (ChatParticipant) TableName() string { return "chat_participants" }

// ChatMessage 聊天消息表 — 对应 chat_messages，只追加
type ChatMessage struct {
	MessageID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	RoomID    string    `gorm:"type:uuid;not null;index"                       json:"room_id"`
	SenderID  string    `gorm:"type:uuid;not null"                             json:"sender_id"`
	Content   string    `gorm:"type:text;not null"                             json:"content"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (ChatMessage) TableName() string { return "chat_messages" }
