package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"absensi-server-go/apperrors"
	"absensi-server-go/models"
)

const recordColumns = `id, student_id, tanggal, status`

func day(t time.Time) string {
	return t.Format(models.DateLayout)
}

// ReplaceDay deletes every record for date and inserts one record per entry
// in statuses, all in one transaction. Students missing from statuses get no
// record for the date.
func (s *Store) ReplaceDay(ctx context.Context, date time.Time, statuses map[int64]models.Status) error {
	ids := make([]int64, 0, len(statuses))
	for id, st := range statuses {
		if !st.Valid() {
			return apperrors.Validation(fmt.Sprintf("invalid status for student %d", id))
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	tanggal := day(date)

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE tanggal = ?`, tanggal); err != nil {
			return fmt.Errorf("failed to clear attendance for %s: %w", tanggal, err)
		}

		// The upsert makes a racing submit for the same day resolve as
		// last-commit-wins instead of failing on the unique key.
		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO attendance (student_id, tanggal, status) VALUES (?, ?, ?)
			ON CONFLICT (student_id, tanggal) DO UPDATE SET status = excluded.status`)
		if err != nil {
			return fmt.Errorf("failed to prepare attendance insert: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, id, tanggal, statuses[id]); err != nil {
				if isForeignKeyViolation(err) {
					return apperrors.NotFound("student %d not found", id)
				}
				return fmt.Errorf("failed to insert attendance for student %d on %s: %w", id, tanggal, err)
			}
		}
		return nil
	})
}

func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// RecordsForDate returns the records for one date. An empty result means no
// attendance was taken that day.
func (s *Store) RecordsForDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error) {
	records := []models.AttendanceRecord{}
	err := s.DB.SelectContext(ctx, &records,
		`SELECT `+recordColumns+` FROM attendance WHERE tanggal = ? ORDER BY student_id`, day(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance for %s: %w", day(date), err)
	}
	return records, nil
}

// RecordsInRange returns one student's records with start <= tanggal < end.
func (s *Store) RecordsInRange(ctx context.Context, studentID int64, start, end time.Time) ([]models.AttendanceRecord, error) {
	records := []models.AttendanceRecord{}
	err := s.DB.SelectContext(ctx, &records,
		`SELECT `+recordColumns+` FROM attendance
		 WHERE student_id = ? AND tanggal >= ? AND tanggal < ?
		 ORDER BY tanggal`, studentID, day(start), day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance for student %d: %w", studentID, err)
	}
	return records, nil
}

// AllRecordsInRange is RecordsInRange for every student at once.
func (s *Store) AllRecordsInRange(ctx context.Context, start, end time.Time) ([]models.AttendanceRecord, error) {
	records := []models.AttendanceRecord{}
	err := s.DB.SelectContext(ctx, &records,
		`SELECT `+recordColumns+` FROM attendance
		 WHERE tanggal >= ? AND tanggal < ?
		 ORDER BY student_id, tanggal`, day(start), day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance between %s and %s: %w", day(start), day(end), err)
	}
	return records, nil
}

// AllRecords returns the whole attendance history ordered by date.
func (s *Store) AllRecords(ctx context.Context) ([]models.AttendanceRecord, error) {
	records := []models.AttendanceRecord{}
	if err := s.DB.SelectContext(ctx, &records,
		`SELECT `+recordColumns+` FROM attendance ORDER BY tanggal, student_id`); err != nil {
		return nil, fmt.Errorf("failed to get attendance history: %w", err)
	}
	return records, nil
}

// GetRecord returns one record by id
func (s *Store) GetRecord(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.DB.GetContext(ctx, &rec, `SELECT `+recordColumns+` FROM attendance WHERE id = ?`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("attendance record %d not found", id)
		}
		return nil, fmt.Errorf("failed to get attendance record %d: %w", id, err)
	}
	return &rec, nil
}

// UpdateStatus corrects the status of a single record
func (s *Store) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	if !status.Valid() {
		return apperrors.Validation("invalid attendance status")
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE attendance SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update attendance record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update attendance record %d: %w", id, err)
	}
	if n == 0 {
		return apperrors.NotFound("attendance record %d not found", id)
	}
	return nil
}

// DeleteAll clears the entire attendance history and reports how many
// records were removed.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM attendance`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance history: %w", err)
	}
	return res.RowsAffected()
}

// AbsenceCounts returns the all-time number of Absent records for every
// student that has at least one, ordered by student id.
func (s *Store) AbsenceCounts(ctx context.Context) ([]models.AbsenceCount, error) {
	counts := []models.AbsenceCount{}
	err := s.DB.SelectContext(ctx, &counts, `
		SELECT s.id AS student_id, s.nama, s.kelas, COUNT(a.id) AS absences
		FROM student s
		JOIN attendance a ON a.student_id = s.id
		WHERE a.status = ?
		GROUP BY s.id, s.nama, s.kelas
		ORDER BY s.id`, models.StatusAbsent)
	if err != nil {
		return nil, fmt.Errorf("failed to count absences: %w", err)
	}
	return counts, nil
}
