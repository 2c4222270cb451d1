package middleware

import (
	"autotasking/pkg/errutil"
	"autotasking/pkg/session"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

// Authenticate resolves the caller from the admin basic pair or the session
// cookie. A bad basic pair falls through to the cookie.
func Authenticate(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, pass, ok := c.Request.BasicAuth(); ok {
			if id, ok := sessions.Admin(user, pass); ok {
				SetIdentity(c, *id)
				c.Next()
				return
			}
		}

		id, err := sessions.FromRequest(c)
		if err != nil {
			c.Header("WWW-Authenticate", `Basic realm="Admin"`)
			_ = c.Error(err)
			c.Abort()
			return
		}

		SetIdentity(c, *id)
		c.Next()
	}
}

// Authorize checks the caller's role against the route policy.
func Authorize(e *casbin.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			_ = c.Error(errutil.Unauthorized("unauthorized", nil))
			c.Abort()
			return
		}

		allowed, err := e.Enforce(id.Role, c.FullPath(), c.Request.Method)
		if err != nil {
			zap.L().Error("policy evaluation failed", zap.Error(err))
			_ = c.Error(errutil.Internal("policy evaluation failed", err))
			c.Abort()
			return
		}

		if !allowed {
			c.Header("WWW-Authenticate", `Basic realm="Admin"`)
			_ = c.Error(errutil.Unauthorized("unauthorized", nil))
			c.Abort()
			return
		}

		c.Next()
	}
}

func SetIdentity(c *gin.Context, id session.Identity) {
	c.Set(identityKey, id)
}

func IdentityFrom(c *gin.Context) (session.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return session.Identity{}, false
	}
	id, ok := v.(session.Identity)
	return id, ok
}
