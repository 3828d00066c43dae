package handler

import (
	"net/http"

	"groupchat/internal/services"
	"groupchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service *services.ChatService
	events  *services.EventPublisher
}

func NewChatHandler(service *services.ChatService, events *services.EventPublisher) *ChatHandler {
	return &ChatHandler{service: service, events: events}
}

func (h *ChatHandler) Create(c *gin.Context) {
	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	memberIDs := make([]uuid.UUID, 0, len(req.MemberIDs))
	for _, raw := range req.MemberIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid member_ids")
			return
		}
		memberIDs = append(memberIDs, id)
	}

	created, err := h.service.Create(c.Request.Context(), actor, req.Name, memberIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.ChatCreated(c.Request.Context(), created)
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromChat(created)))
}

func (h *ChatHandler) List(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	chats, err := h.service.ListForUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChats(chats)))
}

func (h *ChatHandler) Get(c *gin.Context) {
	chatID, ok := pathUUID(c, "chat_id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	found, err := h.service.Get(c.Request.Context(), chatID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChat(found)))
}

func (h *ChatHandler) AddMember(c *gin.Context) {
	chatID, ok := pathUUID(c, "chat_id")
	if !ok {
		return
	}
	var req httpdto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		badRequest(c, "invalid user_id")
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	updated, err := h.service.AddMember(c.Request.Context(), chatID, actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.MemberAdded(c.Request.Context(), chatID, userID, actor.ID)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChat(updated)))
}

func (h *ChatHandler) RemoveMember(c *gin.Context) {
	chatID, ok := pathUUID(c, "chat_id")
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	updated, err := h.service.RemoveMember(c.Request.Context(), chatID, actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.MemberRemoved(c.Request.Context(), chatID, userID, actor.ID)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChat(updated)))
}
