package sessions

import (
	"net/http"
	"time"

	"sigem/account"
	"sigem/bizerror"
	"sigem/session"

	"github.com/gin-gonic/gin"
)

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", DetailSessionSecurityContext)
}

// DetailSessionSecurityContext refreshes the cached session with the user's
// current permissions and returns it.
func DetailSessionSecurityContext(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	if s.Token == "" {
		panic(bizerror.ErrUnauthenticated)
	}

	now := time.Now()
	ttl := session.TokenExpiration - now.Sub(s.SigningTime)
	if ttl > 0 {
		perms, identity := account.LoadPermFunc(s.Identity.ID)
		securityContext := session.Session{Token: s.Token, Identity: identity, Perms: perms, SigningTime: now}
		session.TokenCache.Set(s.Token, &securityContext, ttl)
		c.JSON(http.StatusOK, &securityContext)
	} else {
		panic(bizerror.ErrUnauthenticated)
	}
}
