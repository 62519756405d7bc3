package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"absensi-server-go/apperrors"
	"absensi-server-go/auth"
)

type loginForm struct {
	Username string `form:"username" json:"username" binding:"required,min=2,max=20"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Home handles GET /
func (h *APIHandler) Home(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/total_rekap")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// LoginStatus handles GET /login
func (h *APIHandler) LoginStatus(c *gin.Context) {
	if user := currentUser(c); user != nil {
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Silakan login terlebih dahulu"})
}

// Login handles POST /login
func (h *APIHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.respond(c, bindError(err))
		return
	}

	user, err := h.Store.GetUserByUsername(c.Request.Context(), form.Username)
	if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		h.respond(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(form.Password, user.PasswordHash) {
		h.Logger.Warn("failed login attempt", "username", form.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	session.Set(sessionRole, string(user.Role))
	if err := session.Save(); err != nil {
		h.respond(c, err)
		return
	}
	h.Logger.Info("user logged in", "user", user.Username, "role", user.Role)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

// Logout handles POST /logout
func (h *APIHandler) Logout(c *gin.Context) {
	username := usernameOf(c)
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.respond(c, err)
		return
	}
	h.Logger.Info("user logged out", "user", username)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
