package middleware

import (
	"strings"

	"bounty-backend/internal/api/response"
	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const actorKey = "bounty.actor"

// Authenticator 将令牌解析为请求身份
type Authenticator interface {
	Authenticate(token string) (models.Actor, error)
}

// Auth 校验 Bearer 令牌并把身份写入上下文
func Auth(auth Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "auth").Logger()
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.Error(c, apperr.Unauthenticated(apperr.CodeInvalidToken, "bearer token is required"))
			return
		}

		actor, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("Rejecting request token")
			response.Error(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom 读取当前请求身份
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
