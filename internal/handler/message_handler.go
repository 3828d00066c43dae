package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"groupchat/internal/domain/message"
	"groupchat/internal/services"
	"groupchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service     *services.MessageService
	attachments *services.AttachmentService
	events      *services.EventPublisher
	maxLimit    int
}

// NewMessageHandler builds the message routes. List rejects a limit above
// maxLimit; zero or less falls back to services.DefaultListLimit as the cap.
func NewMessageHandler(service *services.MessageService, attachments *services.AttachmentService, events *services.EventPublisher, maxLimit int) *MessageHandler {
	if maxLimit <= 0 {
		maxLimit = services.DefaultListLimit
	}
	return &MessageHandler{service: service, attachments: attachments, events: events, maxLimit: maxLimit}
}

func (h *MessageHandler) Send(c *gin.Context) {
	chatID, ok := pathUUID(c, "chat_id")
	if !ok {
		return
	}
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	sent, err := h.service.Send(c.Request.Context(), actor, req.Content, chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.MessageCreated(c.Request.Context(), sent)
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromMessage(sent)))
}

func (h *MessageHandler) List(c *gin.Context) {
	chatID, ok := pathUUID(c, "chat_id")
	if !ok {
		return
	}
	limit, err := parseInt(c.Query("limit"))
	if err != nil {
		badRequest(c, "invalid limit")
		return
	}
	if limit > h.maxLimit {
		badRequest(c, fmt.Sprintf("limit must not exceed %d", h.maxLimit))
		return
	}
	offset, err := parseInt(c.Query("offset"))
	if err != nil {
		badRequest(c, "invalid offset")
		return
	}
	newestFirst, _ := strconv.ParseBool(c.Query("newest_first"))
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), chatID, services.ListOptions{
		Limit:       limit,
		Offset:      offset,
		NewestFirst: newestFirst,
		Viewer:      &actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessages(items)))
}

func (h *MessageHandler) Get(c *gin.Context) {
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	m, err := h.service.Get(c.Request.Context(), message.ByID(messageID), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessage(m)))
}

func (h *MessageHandler) Edit(c *gin.Context) {
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := h.service.Edit(c.Request.Context(), message.ByID(messageID), actor, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.MessageUpdated(c.Request.Context(), updated, actor.ID)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessage(updated)))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	ref := message.ByID(messageID)
	// Loaded only to address the deletion event; Delete re-reads the row.
	existing, findErr := h.service.Find(c.Request.Context(), ref)
	deleted, err := h.service.Delete(c.Request.Context(), ref, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if deleted && findErr == nil {
		h.events.MessageDeleted(c.Request.Context(), existing, actor.ID)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.DeleteResponse{Deleted: deleted}))
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	m, found, err := h.service.MarkAsRead(c.Request.Context(), message.ByID(messageID), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("message not found", "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessage(m)))
}

func (h *MessageHandler) Attach(c *gin.Context) {
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	var req httpdto.AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	upload, err := h.attachments.Attach(c.Request.Context(), message.ByID(messageID), actor, services.AttachmentInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.AttachmentAdded(c.Request.Context(), upload.ChatID, upload.Attachment)
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromAttachmentUpload(upload)))
}

func (h *MessageHandler) ListAttachments(c *gin.Context) {
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	views, err := h.attachments.List(c.Request.Context(), message.ByID(messageID), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromAttachmentViews(views)))
}
