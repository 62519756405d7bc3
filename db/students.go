package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"absensi-server-go/apperrors"
	"absensi-server-go/models"
)

// ErrDuplicateName is the message shown when a manual add or edit reuses an
// existing student name.
const ErrDuplicateName = "Nama siswa sudah ada. Silakan gunakan nama yang berbeda."

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ListStudents returns the whole roster ordered by id
func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	if err := s.DB.SelectContext(ctx, &students, `SELECT id, nama, kelas FROM student ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// StudentPage is one page of a roster search
type StudentPage struct {
	Students []models.Student `json:"students"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

// SearchStudents filters the roster by a case-insensitive substring of the
// name. perPage <= 0 returns every match on a single page.
func (s *Store) SearchStudents(ctx context.Context, query string, page, perPage int) (*StudentPage, error) {
	if page < 1 {
		page = 1
	}
	where := ""
	args := []interface{}{}
	if q := strings.TrimSpace(query); q != "" {
		where = ` WHERE nama LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(q)+"%")
	}

	result := &StudentPage{Students: []models.Student{}, Page: page, PerPage: perPage}
	if err := s.DB.GetContext(ctx, &result.Total, `SELECT COUNT(*) FROM student`+where, args...); err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	q := `SELECT id, nama, kelas FROM student` + where + ` ORDER BY id`
	if perPage > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, perPage, (page-1)*perPage)
	}
	if err := s.DB.SelectContext(ctx, &result.Students, q, args...); err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	return result, nil
}

// GetStudent returns a student by id
func (s *Store) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return getStudent(ctx, s.DB, id)
}

func getStudent(ctx context.Context, q DBTX, id int64) (*models.Student, error) {
	var st models.Student
	if err := q.GetContext(ctx, &st, `SELECT id, nama, kelas FROM student WHERE id = ?`, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("student %d not found", id)
		}
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	return &st, nil
}

func nameTaken(ctx context.Context, q DBTX, nama string, exceptID int64) (bool, error) {
	var n int
	err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM student WHERE nama = ? AND id <> ?`, nama, exceptID)
	if err != nil {
		return false, fmt.Errorf("failed to check student name: %w", err)
	}
	return n > 0, nil
}

func cleanStudent(nama, kelas string) (string, string, error) {
	nama, kelas = strings.TrimSpace(nama), strings.TrimSpace(kelas)
	if nama == "" {
		return "", "", apperrors.Validation("Nama wajib diisi")
	}
	if kelas == "" {
		return "", "", apperrors.Validation("Kelas wajib diisi")
	}
	return nama, kelas, nil
}

// CreateStudent adds a student after checking the name is not taken
func (s *Store) CreateStudent(ctx context.Context, nama, kelas string) (*models.Student, error) {
	nama, kelas, err := cleanStudent(nama, kelas)
	if err != nil {
		return nil, err
	}
	var created *models.Student
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		taken, err := nameTaken(ctx, tx, nama, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Validation(ErrDuplicateName)
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO student (nama, kelas) VALUES (?, ?)`, nama, kelas)
		if err != nil {
			return fmt.Errorf("failed to insert student %s: %w", nama, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to insert student %s: %w", nama, err)
		}
		created = &models.Student{ID: id, Nama: nama, Kelas: kelas}
		return nil
	})
	return created, err
}

// UpdateStudent renames or moves a student. The new name must not belong to
// another student.
func (s *Store) UpdateStudent(ctx context.Context, id int64, nama, kelas string) (*models.Student, error) {
	nama, kelas, err := cleanStudent(nama, kelas)
	if err != nil {
		return nil, err
	}
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getStudent(ctx, tx, id); err != nil {
			return err
		}
		taken, err := nameTaken(ctx, tx, nama, id)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Validation(ErrDuplicateName)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE student SET nama = ?, kelas = ? WHERE id = ?`, nama, kelas, id); err != nil {
			return fmt.Errorf("failed to update student %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.Student{ID: id, Nama: nama, Kelas: kelas}, nil
}

// DeleteStudent removes a student together with all of their attendance
// records and returns what was deleted.
func (s *Store) DeleteStudent(ctx context.Context, id int64) (*models.Student, error) {
	var deleted *models.Student
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		st, err := getStudent(ctx, tx, id)
		if err != nil {
			return err
		}
		// Explicit even though the foreign key cascades, so a connection
		// opened without foreign key enforcement cannot leave orphans.
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE student_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete attendance of student %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM student WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete student %d: %w", id, err)
		}
		deleted = st
		return nil
	})
	return deleted, err
}

// ImportStudents inserts every row in one transaction. Unlike CreateStudent,
// names are not checked for uniqueness.
func (s *Store) ImportStudents(ctx context.Context, rows []StudentRow) (int, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, `INSERT INTO student (nama, kelas) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare student insert: %w", err)
		}
		defer stmt.Close()
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row.Nama, row.Kelas); err != nil {
				return apperrors.Import(fmt.Errorf("row %d (%s): %w", row.Line, row.Nama, err))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
