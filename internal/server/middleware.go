package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"matjip/apps/backend/internal/logging"
	"matjip/apps/backend/internal/session"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logging.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logging.Error()
		case status >= http.StatusBadRequest:
			event = logging.Warn()
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(started)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// bearerSessionMiddleware resolves the bearer token to a stored session.
func (a *App) bearerSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		id, err := a.tokens.Parse(tokenString)
		if err != nil {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}
		machine, err := a.sessions.Get(id)
		if errors.Is(err, session.ErrNotFound) || (err == nil && machine.State() == session.StateLoggedOut) {
			writeError(c, http.StatusUnauthorized, "Session expired")
			return
		}
		if err != nil {
			writeError(c, http.StatusInternalServerError, "Failed to load session")
			return
		}

		c.Set(sessionIDKey, id)
		c.Set(sessionKey, machine)
		c.Next()
	}
}

// cookieSessionMiddleware resolves the session cookie and sends visitors
// without a live session to the login page.
func (a *App) cookieSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(sessionCookieName)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		id, err := a.tokens.Parse(raw)
		if err != nil {
			a.clearSessionCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		machine, err := a.sessions.Get(id)
		if err != nil || machine.State() == session.StateLoggedOut {
			a.clearSessionCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set(sessionIDKey, id)
		c.Set(sessionKey, machine)
		c.Next()
	}
}

func (a *App) setSessionCookie(c *gin.Context, token string) {
	maxAge := a.cfg.SessionTTLHours * 3600
	if maxAge <= 0 {
		maxAge = 12 * 3600
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, maxAge, "/", "", a.cfg.CookieSecure, true)
}

func (a *App) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", a.cfg.CookieSecure, true)
}
