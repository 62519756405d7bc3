package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"absensi-server-go/apperrors"
	"absensi-server-go/auth"
	"absensi-server-go/models"
)

const (
	requestIDKey   = "reqid"
	currentUserKey = "currentUser"

	sessionUserID   = "user_id"
	sessionUsername = "username"
	sessionRole     = "role"
)

// RequestLogger logs every request with a request id, generating one when
// the client did not send X-Request-ID.
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set(requestIDKey, id)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"id", id, "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "dur", time.Since(start), "user", usernameOf(c))
	}
}

// Recovery turns a panic into a generic 500 without leaking details.
func Recovery(logger *log.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic in handler",
			"method", c.Request.Method, "path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey), "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": genericFailure})
	})
}

// LoadUser resolves the session's user id to an account and stores it on the
// context. Sessions pointing at a deleted account are cleared.
func (h *APIHandler) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := session.Get(sessionUserID).(int64)
		if !ok {
			c.Next()
			return
		}
		user, err := h.Store.GetUserByID(c.Request.Context(), id)
		if err != nil {
			if !apperrors.Is(err, apperrors.KindNotFound) {
				h.respond(c, err)
				return
			}
			session.Clear()
			_ = session.Save()
			c.Next()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// Require aborts unless the current user may perform action: 401 for
// anonymous requests, 403 for a role without the grant.
func (h *APIHandler) Require(action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if auth.CanPerform(user, action) {
			c.Next()
			return
		}
		if user == nil {
			h.respond(c, apperrors.Unauthenticated())
			return
		}
		h.Logger.Warn("forbidden", "user", user.Username, "role", user.Role, "action", action)
		h.respond(c, apperrors.Forbidden(string(action)))
	}
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func usernameOf(c *gin.Context) string {
	if u := currentUser(c); u != nil {
		return u.Username
	}
	return "anonymous"
}
