package middleware

import (
	"context"
	"net/http"
	"strings"

	"groupchat/internal/domain/user"
	"groupchat/internal/transport/httpdto"
	"groupchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const currentUserKey = "current_user"

type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

// AuthMiddleware resolves the bearer token to an active user and stores it on
// the gin context for CurrentUser.
func AuthMiddleware(tokens TokenParser, users UserLookup, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := tokens.Parse(extractBearer(c))
		if err != nil {
			abortUnauthorized(c)
			return
		}

		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || !u.IsActive {
			l.Warn(c.Request.Context(), "rejecting token for unknown or inactive user", zap.String("user_id", userID.String()))
			abortUnauthorized(c)
			return
		}

		ctx := context.WithValue(c.Request.Context(), logger.UserIdKey, u.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(currentUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
