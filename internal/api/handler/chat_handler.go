package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"depothub/internal/dto"
	"depothub/internal/service"
	"depothub/pkg/response"
)

// ChatHandler 聊天模块 HTTP 处理器
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建 ChatHandler
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// GetRoom 请求对应的聊天室
// GET /api/v1/requests/:id/chat
func (h *ChatHandler) GetRoom(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	room, err := h.chatSvc.GetRoom(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, room)
}

// ListMessages 聊天记录（时间正序）
// GET /api/v1/requests/:id/chat/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	messages, total, err := h.chatSvc.ListMessages(c.Request.Context(), actor, c.Param("id"), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, messages, total, page, pageSize)
}

// SendMessage 发送消息（能否发言由请求最新状态实时推导）
// POST /api/v1/requests/:id/chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	msg, err := h.chatSvc.SendMessage(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, msg)
}
