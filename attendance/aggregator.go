// Package attendance computes monthly recaps from stored attendance records
// and checks absence thresholds.
package attendance

import (
	"context"
	"fmt"
	"time"

	"absensi-server-go/apperrors"
	"absensi-server-go/models"
)

// RecordSource is the read side of the attendance store
type RecordSource interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	RecordsForDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error)
	RecordsInRange(ctx context.Context, studentID int64, start, end time.Time) ([]models.AttendanceRecord, error)
	AllRecordsInRange(ctx context.Context, start, end time.Time) ([]models.AttendanceRecord, error)
	AllRecords(ctx context.Context) ([]models.AttendanceRecord, error)
}

// Aggregator derives per-student monthly totals
type Aggregator struct {
	source RecordSource
}

func NewAggregator(source RecordSource) *Aggregator {
	return &Aggregator{source: source}
}

// MonthBounds returns [first of month, first of next month). December ends
// on January 1st of the following year.
func MonthBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, apperrors.Validation(fmt.Sprintf("bulan tidak valid: %d", month))
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, apperrors.Validation(fmt.Sprintf("tahun tidak valid: %d", year))
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	var end time.Time
	if month == 12 {
		end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		end = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	}
	return start, end, nil
}

// MonthlyTotals counts one student's records per status within the month.
func (a *Aggregator) MonthlyTotals(ctx context.Context, studentID int64, year, month int) (models.Totals, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return models.Totals{}, err
	}
	records, err := a.source.RecordsInRange(ctx, studentID, start, end)
	if err != nil {
		return models.Totals{}, err
	}
	var t models.Totals
	for _, r := range records {
		t.Add(r.Status)
	}
	return t, nil
}

// Recap is every student's totals for one month. Holiday is set when there
// is no data to show, and callers should render an empty state instead of
// a table of zeros.
type Recap struct {
	Year     int                       `json:"year"`
	Month    int                       `json:"month"`
	Date     string                    `json:"date,omitempty"`
	Holiday  bool                      `json:"holiday"`
	Students []models.StudentTotals    `json:"students"`
	Records  []models.AttendanceRecord `json:"records,omitempty"`
}

// Totals returns the recap as a student id -> totals map
func (r *Recap) Totals() map[int64]models.Totals {
	m := make(map[int64]models.Totals, len(r.Students))
	for _, st := range r.Students {
		m[st.ID] = st.Totals
	}
	return m
}

// MonthlyRecap computes totals for every student with a single range read.
func (a *Aggregator) MonthlyRecap(ctx context.Context, year, month int) (*Recap, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}
	students, err := a.source.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	records, err := a.source.AllRecordsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[int64]*models.Totals, len(students))
	for _, r := range records {
		t, ok := byStudent[r.StudentID]
		if !ok {
			t = &models.Totals{}
			byStudent[r.StudentID] = t
		}
		t.Add(r.Status)
	}

	recap := &Recap{
		Year:     year,
		Month:    month,
		Holiday:  len(records) == 0,
		Students: make([]models.StudentTotals, 0, len(students)),
	}
	for _, st := range students {
		row := models.StudentTotals{Student: st}
		if t, ok := byStudent[st.ID]; ok {
			row.Totals = *t
		}
		recap.Students = append(recap.Students, row)
	}
	return recap, nil
}

// DateRecap is the recap shown for a specific day. If nothing was recorded
// on date the day is treated as a holiday and no totals are computed;
// otherwise the totals are those of date's month and Records holds the day.
func (a *Aggregator) DateRecap(ctx context.Context, date time.Time) (*Recap, error) {
	records, err := a.source.RecordsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Recap{
			Year:     date.Year(),
			Month:    int(date.Month()),
			Date:     date.Format(models.DateLayout),
			Holiday:  true,
			Students: []models.StudentTotals{},
		}, nil
	}
	recap, err := a.MonthlyRecap(ctx, date.Year(), int(date.Month()))
	if err != nil {
		return nil, err
	}
	recap.Date = date.Format(models.DateLayout)
	recap.Records = records
	return recap, nil
}

// Series is the attendance history laid out for charting: one column per
// distinct recorded date, one row per student.
type Series struct {
	Dates    []string        `json:"dates"`
	Students []StudentSeries `json:"students"`
}

// StudentSeries holds, per date in Series.Dates, the status code ("" when
// the student has no record that day) and the number of Present records.
type StudentSeries struct {
	models.Student
	Statuses []string `json:"statuses"`
	Hadir    []int    `json:"hadir"`
}

// DailySeries builds the chart series over the whole history.
func (a *Aggregator) DailySeries(ctx context.Context) (*Series, error) {
	students, err := a.source.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	records, err := a.source.AllRecords(ctx)
	if err != nil {
		return nil, err
	}

	series := &Series{Dates: []string{}, Students: make([]StudentSeries, 0, len(students))}
	dateIdx := map[string]int{}
	for _, r := range records {
		if _, ok := dateIdx[r.Tanggal]; !ok {
			dateIdx[r.Tanggal] = len(series.Dates)
			series.Dates = append(series.Dates, r.Tanggal)
		}
	}

	rowIdx := make(map[int64]int, len(students))
	for i, st := range students {
		rowIdx[st.ID] = i
		series.Students = append(series.Students, StudentSeries{
			Student:  st,
			Statuses: make([]string, len(series.Dates)),
			Hadir:    make([]int, len(series.Dates)),
		})
	}
	for _, r := range records {
		i, ok := rowIdx[r.StudentID]
		if !ok {
			continue
		}
		j := dateIdx[r.Tanggal]
		series.Students[i].Statuses[j] = r.Status.Code()
		if r.Status == models.StatusPresent {
			series.Students[i].Hadir[j]++
		}
	}
	return series, nil
}
