package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"code-submitter/internal/auth"
)

const (
	userKey   = "user"
	scopesKey = "scopes"

	authRealm         = `Basic realm="Student Robotics' Code Submitter"`
	loginRequiredBody = "You must login to submit code."
	forbiddenBody     = "Forbidden"

	uploadNeedsTeamMessage   = "Must be a member of a team to be able to upload files"
	chooseNeedsTeamMessage   = "Must be a member of a team to be able to choose archives"
	downloadNeedsTeamMessage = "Must be a member of a team to be able to download individual archives"
)

// authenticate resolves Basic credentials through the configured validator.
// Every failure gets the same 401 so the browser prompts for a login again.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, err := auth.ExtractBasicAuth(c.GetHeader("Authorization"))
		var (
			scopes auth.Scopes
			user   auth.User
		)
		if err == nil {
			scopes, user, err = s.validator.Validate(c.Request.Context(), username, password)
		}
		if err != nil {
			if !errors.Is(err, auth.ErrNoCredentials) {
				slog.Info("authentication failed",
					"request_id", requestID(c),
					"username", username,
					"error", err,
				)
			}
			c.Header("WWW-Authenticate", authRealm)
			c.String(http.StatusUnauthorized, loginRequiredBody)
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Set(scopesKey, scopes)
		c.Next()
	}
}

func requireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentScopes(c).Has(scope) {
			c.String(http.StatusForbidden, forbiddenBody)
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireTeam(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).HasTeam() {
			c.String(http.StatusForbidden, message)
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) auth.User {
	user, _ := c.Get(userKey)
	value, _ := user.(auth.User)
	return value
}

func currentScopes(c *gin.Context) auth.Scopes {
	scopes, _ := c.Get(scopesKey)
	value, _ := scopes.(auth.Scopes)
	return value
}
