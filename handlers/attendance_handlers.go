package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"absensi-server-go/apperrors"
	"absensi-server-go/models"
	"absensi-server-go/report"
)

const statusFieldPrefix = "status-"

// dateParam reads ?date=YYYY-MM-DD, defaulting to today.
func (h *APIHandler) dateParam(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return h.today(), nil
	}
	d, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.Validation(fmt.Sprintf("tanggal tidak valid: %q (format YYYY-MM-DD)", raw))
	}
	return d, nil
}

// statusesFromForm reads status-<id> for every student on the roster.
// Students without a field default to Present.
func statusesFromForm(c *gin.Context, students []models.Student) (map[int64]models.Status, error) {
	statuses := make(map[int64]models.Status, len(students))
	for _, st := range students {
		code := c.DefaultPostForm(statusFieldPrefix+strconv.FormatInt(st.ID, 10), models.StatusPresent.Code())
		status, err := models.ParseStatus(code)
		if err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("status tidak valid untuk %s: %q", st.Nama, code))
		}
		statuses[st.ID] = status
	}
	return statuses, nil
}

// submitDay replaces the attendance of date from the posted form and runs
// the absence check once the write is committed.
func (h *APIHandler) submitDay(c *gin.Context, date time.Time) {
	ctx := c.Request.Context()
	students, err := h.Store.ListStudents(ctx)
	if err != nil {
		h.respond(c, err)
		return
	}
	statuses, err := statusesFromForm(c, students)
	if err != nil {
		h.respond(c, err)
		return
	}
	if err := h.Store.ReplaceDay(ctx, date, statuses); err != nil {
		h.respond(c, err)
		return
	}
	day := date.Format(models.DateLayout)
	h.Logger.Info("attendance updated", "user", usernameOf(c), "date", day, "students", len(statuses))

	alerts := h.Notifier.Run(ctx)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Absensi tersimpan",
		"date":     day,
		"recorded": len(statuses),
		"notified": alerts,
	})
}

// Index handles GET /index: the roster with today's records
func (h *APIHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	today := h.today()
	students, err := h.Store.ListStudents(ctx)
	if err != nil {
		h.respond(c, err)
		return
	}
	records, err := h.Store.RecordsForDate(ctx, today)
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"today":    today.Format(models.DateLayout),
		"students": students,
		"records":  records,
	})
}

// SubmitToday handles POST /index
func (h *APIHandler) SubmitToday(c *gin.Context) {
	h.submitDay(c, h.today())
}

// Rekap handles GET /rekap?date=
func (h *APIHandler) Rekap(c *gin.Context) {
	date, err := h.dateParam(c)
	if err != nil {
		h.respond(c, err)
		return
	}
	recap, err := h.Aggregator.DateRecap(c.Request.Context(), date)
	if err != nil {
		h.respond(c, err)
		return
	}
	body := gin.H{"recap": recap}
	if recap.Holiday {
		body["message"] = report.HolidayMessage(recap)
	}
	c.JSON(http.StatusOK, body)
}

// SubmitDate handles POST /rekap?date=
func (h *APIHandler) SubmitDate(c *gin.Context) {
	date, err := h.dateParam(c)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.submitDay(c, date)
}

// TotalRekap handles GET /total_rekap?year=&month=[&format=html]
func (h *APIHandler) TotalRekap(c *gin.Context) {
	year, month, err := h.yearMonth(c)
	if err != nil {
		h.respond(c, err)
		return
	}
	recap, err := h.Aggregator.MonthlyRecap(c.Request.Context(), year, month)
	if err != nil {
		h.respond(c, err)
		return
	}
	if c.Query("format") == "html" {
		page, err := report.HTMLBytes(recap)
		if err != nil {
			h.respond(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		return
	}
	body := gin.H{"recap": recap, "month_name": report.MonthName(month)}
	if recap.Holiday {
		body["message"] = report.HolidayMessage(recap)
	}
	c.JSON(http.StatusOK, body)
}

// RekapPDF handles GET /rekap/pdf?year=&month=
func (h *APIHandler) RekapPDF(c *gin.Context) {
	year, month, err := h.yearMonth(c)
	if err != nil {
		h.respond(c, err)
		return
	}
	ctx := c.Request.Context()
	recap, err := h.Aggregator.MonthlyRecap(ctx, year, month)
	if err != nil {
		h.respond(c, err)
		return
	}
	pdf, err := h.Renderer.PDF(ctx, recap)
	if err != nil {
		h.respond(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+report.PDFFilename(year, month))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type updateForm struct {
	Status string `form:"status" json:"status" binding:"required,oneof=H A I S"`
}

// GetRecord handles GET /update/:id
func (h *APIHandler) GetRecord(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respond(c, err)
		return
	}
	rec, err := h.Store.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateRecord handles POST /update/:id
func (h *APIHandler) UpdateRecord(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respond(c, err)
		return
	}
	var form updateForm
	if err := c.ShouldBind(&form); err != nil {
		h.respond(c, bindError(err))
		return
	}
	status, err := models.ParseStatus(form.Status)
	if err != nil {
		h.respond(c, apperrors.Validation(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.UpdateStatus(ctx, id, status); err != nil {
		h.respond(c, err)
		return
	}
	rec, err := h.Store.GetRecord(ctx, id)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.Logger.Info("attendance corrected", "user", usernameOf(c),
		"student_id", rec.StudentID, "date", rec.Tanggal, "status", rec.Status)

	alerts := h.Notifier.Run(ctx)
	c.JSON(http.StatusOK, gin.H{"record": rec, "notified": alerts})
}

// DeleteAll handles POST /delete_all
func (h *APIHandler) DeleteAll(c *gin.Context) {
	ctx := c.Request.Context()
	n, err := h.Store.DeleteAll(ctx)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.Notifier.Reset(ctx)
	h.Logger.Warn("all attendance records deleted", "user", usernameOf(c), "deleted", n)
	c.JSON(http.StatusOK, gin.H{"message": "Semua data absensi dihapus", "deleted": n})
}
