package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"absensi-server-go/auth"
)

const sessionName = "absensi_session"

// NewRouter wires middleware and routes onto a fresh gin engine
func NewRouter(h *APIHandler, sessionSecret []byte, secureCookie bool) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(h.Logger), Recovery(h.Logger))

	store := cookie.NewStore(sessionSecret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, store), h.LoadUser())

	router.GET("/ping", PingHandler)
	router.GET("/", h.Home)
	router.GET("/login", h.LoginStatus)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)

	// Recap pages and the JSON API need no login
	recap := h.Require(auth.ActionViewRecap)
	router.GET("/rekap", recap, h.Rekap)
	router.GET("/total_rekap", recap, h.TotalRekap)
	router.GET("/rekap/pdf", recap, h.RekapPDF)

	record := h.Require(auth.ActionRecordAttendance)
	router.GET("/index", record, h.Index)
	router.POST("/index", record, h.SubmitToday)
	router.POST("/rekap", record, h.SubmitDate)

	correct := h.Require(auth.ActionCorrectAttendance)
	router.GET("/update/:id", correct, h.GetRecord)
	router.POST("/update/:id", correct, h.UpdateRecord)

	router.POST("/delete_all", h.Require(auth.ActionDeleteAllAttendance), h.DeleteAll)

	router.GET("/students", h.Require(auth.ActionViewStudents), h.Students)
	manage := h.Require(auth.ActionManageStudents)
	router.POST("/student/add", manage, h.AddStudent)
	router.POST("/student/edit/:id", manage, h.EditStudent)
	router.POST("/student/delete/:id", manage, h.DeleteStudent)
	router.POST("/upload", h.Require(auth.ActionImportStudents), h.Upload)

	api := router.Group("/api", recap)
	{
		api.GET("/students", h.APIStudents)
		api.GET("/students/:id", h.APIStudent)
		api.GET("/attendance/series", h.APISeries)
	}

	router.NoRoute(func(c *gin.Context) {
		h.Logger.Warn("page not found", "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
	})
	return router
}
