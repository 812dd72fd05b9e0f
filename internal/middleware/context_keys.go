package middleware

import "github.com/gin-gonic/gin"

// actorKey is the key used to store the acting principal in the Gin context.
const actorKey = contextKey("actor")

// actorHeader carries the caller identity supplied by billing collaborators.
const actorHeader = "X-Actor-ID"

// systemActor is recorded when no caller identity is supplied, and for
// rows written by background workers.
const SystemActor = "system"

// ActorMiddleware extracts the acting principal from the request header.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(actorHeader)
		if actor == "" {
			actor = SystemActor
		}
		c.Set(string(actorKey), actor)
		c.Next()
	}
}

// GetActorFromContext retrieves the acting principal from the Gin context.
func GetActorFromContext(c *gin.Context) string {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		return SystemActor
	}
	actor, ok := actorVal.(string)
	if !ok || actor == "" {
		return SystemActor
	}
	return actor
}
