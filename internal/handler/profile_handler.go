package handler

import (
	"net/http"

	"groupchat/internal/services"
	"groupchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service *services.ProfileService
}

func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get answers GET /profile; the profile is created on first access.
func (h *ProfileHandler) Get(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	p, _, err := h.service.GetProfile(c.Request.Context(), actor, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromProfile(p)))
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		badRequest(c, "invalid request")
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.service.UpdateProfile(c.Request.Context(), actor, values, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromProfile(p)))
}
