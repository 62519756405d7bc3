package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"absensi-server-go/apperrors"
	"absensi-server-go/db"
	"absensi-server-go/models"
)

const studentsPerPage = 10

type studentForm struct {
	Nama  string `form:"nama" json:"nama" binding:"required,min=2,max=50"`
	Kelas string `form:"kelas" json:"kelas" binding:"required,min=1,max=20"`
}

// Students handles GET /students?page=&search=&show_all=
func (h *APIHandler) Students(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage := studentsPerPage
	if c.Query("show_all") == "true" {
		perPage = 0
	}
	search := c.Query("search")

	result, err := h.Store.SearchStudents(c.Request.Context(), search, page, perPage)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.Logger.Debug("students viewed", "user", usernameOf(c), "page", page, "search", search, "show_all", perPage == 0)
	c.JSON(http.StatusOK, result)
}

// AddStudent handles POST /student/add
func (h *APIHandler) AddStudent(c *gin.Context) {
	var form studentForm
	if err := c.ShouldBind(&form); err != nil {
		h.respond(c, bindError(err))
		return
	}
	st, err := h.Store.CreateStudent(c.Request.Context(), form.Nama, form.Kelas)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.Logger.Info("student added", "user", usernameOf(c), "nama", st.Nama)
	c.JSON(http.StatusCreated, st)
}

// EditStudent handles POST /student/edit/:id
func (h *APIHandler) EditStudent(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respond(c, err)
		return
	}
	var form studentForm
	if err := c.ShouldBind(&form); err != nil {
		h.respond(c, bindError(err))
		return
	}
	st, err := h.Store.UpdateStudent(c.Request.Context(), id, form.Nama, form.Kelas)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.Logger.Info("student edited", "user", usernameOf(c), "nama", st.Nama)
	c.JSON(http.StatusOK, st)
}

// DeleteStudent handles POST /student/delete/:id
func (h *APIHandler) DeleteStudent(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respond(c, err)
		return
	}
	ctx := c.Request.Context()
	st, err := h.Store.DeleteStudent(ctx, id)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.Notifier.Forget(ctx, st.ID)
	h.Logger.Info("student deleted", "user", usernameOf(c), "nama", st.Nama)
	c.JSON(http.StatusOK, gin.H{"message": "Siswa dihapus", "student": st})
}

// Upload handles POST /upload: bulk student import from a spreadsheet
func (h *APIHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.respond(c, apperrors.Validation("No file part"))
		return
	}
	if header.Filename == "" {
		h.respond(c, apperrors.Validation("No selected file"))
		return
	}
	if !db.AllowedImportFile(header.Filename) {
		h.respond(c, apperrors.Validation("file harus berformat .xlsx atau .xls"))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.respond(c, err)
		return
	}
	defer file.Close()

	rows, err := db.ReadStudentRows(file, header.Filename)
	if err != nil {
		h.Logger.Warn("student import rejected", "user", usernameOf(c), "file", header.Filename, "err", err)
		h.respond(c, err)
		return
	}
	n, err := h.Store.ImportStudents(c.Request.Context(), rows)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.Logger.Info("students imported", "user", usernameOf(c), "file", header.Filename, "count", n)
	c.JSON(http.StatusOK, gin.H{
		"message":       "File successfully uploaded and data imported",
		"importedCount": n,
	})
}

type apiStudent struct {
	models.Student
	TotalKehadiran models.Totals `json:"total_kehadiran"`
}

// APIStudents handles GET /api/students: every student with the current
// month's totals
func (h *APIHandler) APIStudents(c *gin.Context) {
	n := h.now()
	recap, err := h.Aggregator.MonthlyRecap(c.Request.Context(), n.Year(), int(n.Month()))
	if err != nil {
		h.respond(c, err)
		return
	}
	out := make([]apiStudent, 0, len(recap.Students))
	for _, st := range recap.Students {
		out = append(out, apiStudent{Student: st.Student, TotalKehadiran: st.Totals})
	}
	c.JSON(http.StatusOK, out)
}

// APIStudent handles GET /api/students/:id
func (h *APIHandler) APIStudent(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respond(c, err)
		return
	}
	ctx := c.Request.Context()
	st, err := h.Store.GetStudent(ctx, id)
	if err != nil {
		h.respond(c, err)
		return
	}
	n := h.now()
	totals, err := h.Aggregator.MonthlyTotals(ctx, id, n.Year(), int(n.Month()))
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, apiStudent{Student: *st, TotalKehadiran: totals})
}

// APISeries handles GET /api/attendance/series
func (h *APIHandler) APISeries(c *gin.Context) {
	series, err := h.Aggregator.DailySeries(c.Request.Context())
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}
