package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"absensi-server-go/apperrors"
	"absensi-server-go/attendance"
	"absensi-server-go/db"
	"absensi-server-go/report"
)

// APIHandler holds the dependencies shared by all handlers
type APIHandler struct {
	Store      *db.Store
	Aggregator *attendance.Aggregator
	Notifier   *attendance.Notifier
	Renderer   report.Renderer
	Logger     *log.Logger
	Location   *time.Location   // school time zone, decides what "today" is
	Now        func() time.Time // defaults to time.Now
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(store *db.Store, notifier *attendance.Notifier, renderer report.Renderer, logger *log.Logger, loc *time.Location) *APIHandler {
	if loc == nil {
		loc = time.Local
	}
	return &APIHandler{
		Store:      store,
		Aggregator: attendance.NewAggregator(store),
		Notifier:   notifier,
		Renderer:   renderer,
		Logger:     logger,
		Location:   loc,
		Now:        time.Now,
	}
}

func (h *APIHandler) now() time.Time {
	if h.Now == nil {
		return time.Now().In(h.Location)
	}
	return h.Now().In(h.Location)
}

// today is the current date in the school time zone as a UTC midnight, the
// same form dates parsed from query strings take.
func (h *APIHandler) today() time.Time {
	n := h.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NotFound("invalid id %q", c.Param(name))
	}
	return id, nil
}

// yearMonth reads ?year=&month=, defaulting to the current month.
func (h *APIHandler) yearMonth(c *gin.Context) (int, int, error) {
	n := h.now()
	year, month := n.Year(), int(n.Month())
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, apperrors.Validation("tahun tidak valid: " + v)
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, apperrors.Validation("bulan tidak valid: " + v)
		}
		month = m
	}
	if _, _, err := attendance.MonthBounds(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// PingHandler answers liveness checks
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
