package auth

import "github.com/gin-gonic/gin"

const ginAuthContextKey = "auth.context"

// GinMiddleware returns a gin handler that authenticates the request with g.
// On success the [AuthContext] is available from both [FromGin] and
// [FromRequest]; on failure the chain is aborted with a JSON error.
func GinMiddleware(g *Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, err := g.Authenticate(c.Request)
		if err != nil {
			g.setFailureHeaders(c.Writer.Header(), c.Request, err)
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.Header(RequestIDHeader, ac.RequestID)
		c.Set(ginAuthContextKey, ac)
		c.Request = c.Request.WithContext(WithAuthContext(c.Request.Context(), ac))
		c.Next()
	}
}

// GinRequireAbilities aborts with 403 unless the token has every ability.
// Must run after [GinMiddleware].
func GinRequireAbilities(abilities ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac := FromGin(c)
		if ac == nil {
			c.AbortWithStatusJSON(statusFor(ErrUnauthorized), gin.H{"error": ErrUnauthorized.Error()})
			return
		}
		if !CanAll(ac.Abilities, abilities) {
			c.AbortWithStatusJSON(statusFor(ErrForbidden), gin.H{"error": ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// FromGin retrieves the [AuthContext] set by [GinMiddleware].
// Returns nil if the middleware has not run.
func FromGin(c *gin.Context) *AuthContext {
	v, ok := c.Get(ginAuthContextKey)
	if !ok {
		return nil
	}
	ac, _ := v.(*AuthContext)
	return ac
}
