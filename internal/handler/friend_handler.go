package handler

import (
	"errors"
	"net/http"

	"groupchat/internal/services"
	"groupchat/internal/transport/httpdto"
	groupchat_errors "groupchat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FriendHandler struct {
	service *services.FriendService
	users   *services.UserService
	events  *services.EventPublisher
}

func NewFriendHandler(service *services.FriendService, users *services.UserService, events *services.EventPublisher) *FriendHandler {
	return &FriendHandler{service: service, users: users, events: events}
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req httpdto.FriendRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	toID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		badRequest(c, "invalid to_user_id")
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	to, err := h.users.GetByID(c.Request.Context(), toID)
	if err != nil {
		respondError(c, err)
		return
	}

	fr, created, err := h.service.SendFriendRequest(c.Request.Context(), actor, to)
	if errors.Is(err, groupchat_errors.ErrConflict) {
		// A concurrent request for the same pair won the insert.
		fr, err = h.service.GetRequest(c.Request.Context(), actor.ID, to.ID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.events.FriendRequestSent(c.Request.Context(), fr)
	}
	c.JSON(status, httpdto.NewSuccessResponse(httpdto.FromFriendRequest(fr)))
}

func (h *FriendHandler) Accept(c *gin.Context) {
	requestID, ok := pathUUID(c, "request_id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	fr, err := h.service.AcceptFriendRequest(c.Request.Context(), requestID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	h.events.FriendRequestAccepted(c.Request.Context(), fr)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromFriendRequest(fr)))
}

func (h *FriendHandler) Friends(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	friends, err := h.service.GetFriends(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromUsers(friends)))
}

func (h *FriendHandler) Incoming(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	reqs, err := h.service.ListIncoming(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromFriendRequests(reqs)))
}

func (h *FriendHandler) Outgoing(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	reqs, err := h.service.ListOutgoing(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromFriendRequests(reqs)))
}
