package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
)

const headerActor = "X-Actor"

const maxActorLen = 255

// AttachRequestContext records the caller identity for audit columns. The
// actor header is free text; a missing one falls back to the default actor.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(headerActor))
		if len(actor) > maxActorLen {
			actor = actor[:maxActorLen]
		}
		if actor == "" {
			actor = ctxutil.DefaultActor
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			Actor: actor,
			IP:    c.ClientIP(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
