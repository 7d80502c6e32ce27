package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ActorIDHeader carries the id of the administrator performing a request. The
// edge gateway authenticates the caller and forwards the identity here.
const ActorIDHeader = "X-Actor-Id"

const actorIDKey = "actor_id"

// RequireActor rejects requests that do not identify their acting user.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := strings.TrimSpace(c.GetHeader(ActorIDHeader))
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + ActorIDHeader + " header",
			})
			return
		}

		c.Set(actorIDKey, actorID)
		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.ActorID = actorID
		}

		c.Next()
	}
}

// GetActorID retrieves the acting user id set by RequireActor.
func GetActorID(c *gin.Context) string {
	if actorID, exists := c.Get(actorIDKey); exists {
		if id, ok := actorID.(string); ok {
			return id
		}
	}
	return ""
}
