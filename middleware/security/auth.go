package security

import (
	"strings"

	"github.com/gin-gonic/gin"

	"SProject/global"
	errs "SProject/tools/errs"
	sec "SProject/tools/security"
)

// Context keys the handlers read after the middleware has run.
const (
	CtxCallerKey = "callerID"      // string, the verified subject
	CtxTokenKey  = "authorization" // string, the raw token
)

type Options struct {
	HeaderToken               string // default "authorization"
	EnableAuthorizationBearer bool   // accept "Authorization: Bearer xxx"
}

func DefaultOptions() *Options {
	return &Options{
		HeaderToken:               "authorization",
		EnableAuthorizationBearer: true,
	}
}

// Middleware verifies the caller's token and stores the subject user id
// into the gin context. Requests without a valid token never reach the
// handler.
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		if token == "" && opts.EnableAuthorizationBearer {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}

		if token == "" {
			abortUnauthorized(c, "missing token")
			return
		}

		claims, err := sec.Verify(sec.DefaultOptions(global.GetJwtSecret()), token)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		sub := claims.Subject()
		if sub == "" {
			abortUnauthorized(c, "token has no subject")
			return
		}

		c.Set(CtxTokenKey, token)
		c.Set(CtxCallerKey, sub)
		c.Next()
	}
}

// CallerID returns the verified user id set by Middleware, "" if the
// route ran without auth.
func CallerID(c *gin.Context) string {
	v, _ := c.Get(CtxCallerKey)
	s, _ := v.(string)
	return s
}

func abortUnauthorized(c *gin.Context, detail string) {
	e := errs.ErrTokenInvalid.WithDetail(detail)
	c.AbortWithStatusJSON(errs.HTTPStatus(e), e)
}
