package handler

import (
	"errors"
	"net/http"
	"strconv"

	"groupchat/internal/domain/user"
	"groupchat/internal/middleware"
	"groupchat/internal/transport/httpdto"
	groupchat_errors "groupchat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errorCodes = map[int]string{
	http.StatusBadRequest:            "INVALID_REQUEST",
	http.StatusUnauthorized:          "UNAUTHORIZED",
	http.StatusForbidden:             "FORBIDDEN",
	http.StatusNotFound:              "NOT_FOUND",
	http.StatusConflict:              "CONFLICT",
	http.StatusRequestEntityTooLarge: "TOO_LARGE",
	http.StatusUnprocessableEntity:   "VALIDATION_FAILED",
}

// respondError writes the taxonomy error err. Unknown errors become a 500
// without leaking their text.
func respondError(c *gin.Context, err error) {
	status := groupchat_errors.HTTPStatus(err)
	code, ok := errorCodes[status]
	if !ok {
		_ = c.Error(err)
		return
	}
	resp := httpdto.NewErrorResponse(err.Error(), code)
	var verr *groupchat_errors.ValidationError
	if errors.As(err, &verr) {
		resp.Data = verr.Fields
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(msg, "INVALID_REQUEST"))
}

func currentUser(c *gin.Context) (user.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	}
	return u, ok
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
