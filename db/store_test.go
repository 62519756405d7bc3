package db

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"absensi-server-go/apperrors"
	"absensi-server-go/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	s := NewStore(conn, log.New(io.Discard))
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func mustStudent(t *testing.T, s *Store, nama, kelas string) models.Student {
	t.Helper()
	st, err := s.CreateStudent(context.Background(), nama, kelas)
	require.NoError(t, err)
	return *st
}

func date(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, v)
	require.NoError(t, err)
	return d
}

func statusesOn(t *testing.T, s *Store, d time.Time) map[int64]models.Status {
	t.Helper()
	recs, err := s.RecordsForDate(context.Background(), d)
	require.NoError(t, err)
	out := map[int64]models.Status{}
	for _, r := range recs {
		_, dup := out[r.StudentID]
		require.False(t, dup, "duplicate record for student %d", r.StudentID)
		out[r.StudentID] = r.Status
	}
	return out
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestReplaceDayResubmit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	b := mustStudent(t, s, "Budi", "5B")
	d := date(t, "2024-10-01")

	require.NoError(t, s.ReplaceDay(ctx, d, map[int64]models.Status{a.ID: models.StatusPresent, b.ID: models.StatusAbsent}))
	require.NoError(t, s.ReplaceDay(ctx, d, map[int64]models.Status{a.ID: models.StatusAbsent, b.ID: models.StatusPresent}))

	require.Equal(t, map[int64]models.Status{a.ID: models.StatusAbsent, b.ID: models.StatusPresent}, statusesOn(t, s, d))
}

func TestReplaceDayIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	b := mustStudent(t, s, "Budi", "5B")
	d := date(t, "2024-10-02")
	m := map[int64]models.Status{a.ID: models.StatusSick, b.ID: models.StatusExcused}

	require.NoError(t, s.ReplaceDay(ctx, d, m))
	once := statusesOn(t, s, d)
	require.NoError(t, s.ReplaceDay(ctx, d, m))
	require.Equal(t, once, statusesOn(t, s, d))
	require.Equal(t, m, once)
}

func TestReplaceDayOnlyTouchesItsDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	b := mustStudent(t, s, "Budi", "5B")
	d1, d2 := date(t, "2024-10-01"), date(t, "2024-10-02")

	require.NoError(t, s.ReplaceDay(ctx, d1, map[int64]models.Status{a.ID: models.StatusPresent, b.ID: models.StatusPresent}))
	// b is missing from the map: no record, not a default status
	require.NoError(t, s.ReplaceDay(ctx, d2, map[int64]models.Status{a.ID: models.StatusAbsent}))

	require.Len(t, statusesOn(t, s, d1), 2)
	require.Equal(t, map[int64]models.Status{a.ID: models.StatusAbsent}, statusesOn(t, s, d2))
}

func TestReplaceDayRollsBackOnUnknownStudent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	d := date(t, "2024-10-03")
	require.NoError(t, s.ReplaceDay(ctx, d, map[int64]models.Status{a.ID: models.StatusPresent}))

	err := s.ReplaceDay(ctx, d, map[int64]models.Status{a.ID: models.StatusAbsent, 999: models.StatusAbsent})
	require.True(t, apperrors.Is(err, apperrors.KindNotFound), "got %v", err)

	// The delete of the first step was rolled back too.
	require.Equal(t, map[int64]models.Status{a.ID: models.StatusPresent}, statusesOn(t, s, d))
}

func TestReplaceDayRejectsInvalidStatus(t *testing.T) {
	s := newTestStore(t)
	a := mustStudent(t, s, "Ana", "5A")
	err := s.ReplaceDay(context.Background(), date(t, "2024-10-04"), map[int64]models.Status{a.ID: 0})
	require.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestRecordsInRangeExcludesEnd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	for _, d := range []string{"2024-11-30", "2024-12-01", "2024-12-31", "2025-01-01"} {
		require.NoError(t, s.ReplaceDay(ctx, date(t, d), map[int64]models.Status{a.ID: models.StatusPresent}))
	}
	recs, err := s.RecordsInRange(ctx, a.ID, date(t, "2024-12-01"), date(t, "2025-01-01"))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "2024-12-01", recs[0].Tanggal)
	require.Equal(t, "2024-12-31", recs[1].Tanggal)

	all, err := s.AllRecordsInRange(ctx, date(t, "2024-12-01"), date(t, "2025-01-01"))
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	d := date(t, "2024-10-05")
	require.NoError(t, s.ReplaceDay(ctx, d, map[int64]models.Status{a.ID: models.StatusPresent}))
	recs, err := s.RecordsForDate(ctx, d)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NoError(t, s.UpdateStatus(ctx, recs[0].ID, models.StatusSick))
	rec, err := s.GetRecord(ctx, recs[0].ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusSick, rec.Status)

	err = s.UpdateStatus(ctx, 12345, models.StatusSick)
	require.True(t, apperrors.Is(err, apperrors.KindNotFound))
	_, err = s.GetRecord(ctx, 12345)
	require.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	require.NoError(t, s.ReplaceDay(ctx, date(t, "2024-10-01"), map[int64]models.Status{a.ID: models.StatusPresent}))
	require.NoError(t, s.ReplaceDay(ctx, date(t, "2024-10-02"), map[int64]models.Status{a.ID: models.StatusPresent}))

	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	all, err := s.AllRecords(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestDeleteStudentRemovesRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	b := mustStudent(t, s, "Budi", "5B")
	d := date(t, "2024-10-01")
	require.NoError(t, s.ReplaceDay(ctx, d, map[int64]models.Status{a.ID: models.StatusAbsent, b.ID: models.StatusPresent}))

	deleted, err := s.DeleteStudent(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Ana", deleted.Nama)

	require.Equal(t, map[int64]models.Status{b.ID: models.StatusPresent}, statusesOn(t, s, d))
	recs, err := s.RecordsInRange(ctx, a.ID, date(t, "2000-01-01"), date(t, "2100-01-01"))
	require.NoError(t, err)
	require.Empty(t, recs)

	_, err = s.DeleteStudent(ctx, a.ID)
	require.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestForeignKeyCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	require.NoError(t, s.ReplaceDay(ctx, date(t, "2024-10-01"), map[int64]models.Status{a.ID: models.StatusAbsent}))

	_, err := s.DB.ExecContext(ctx, `DELETE FROM student WHERE id = ?`, a.ID)
	require.NoError(t, err)
	all, err := s.AllRecords(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestUniqueStudentDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	_, err := s.DB.ExecContext(ctx, `INSERT INTO attendance (student_id, tanggal, status) VALUES (?, '2024-10-01', 'H')`, a.ID)
	require.NoError(t, err)
	_, err = s.DB.ExecContext(ctx, `INSERT INTO attendance (student_id, tanggal, status) VALUES (?, '2024-10-01', 'A')`, a.ID)
	require.Error(t, err)
}

func TestCreateStudentRejectsDuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustStudent(t, s, "Ana", "5A")

	_, err := s.CreateStudent(ctx, " Ana ", "5B")
	require.True(t, apperrors.Is(err, apperrors.KindValidation))
	require.Contains(t, err.Error(), "Nama siswa sudah ada")

	_, err = s.CreateStudent(ctx, "", "5B")
	require.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestUpdateStudent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	mustStudent(t, s, "Budi", "5B")

	// keeping your own name is fine
	st, err := s.UpdateStudent(ctx, a.ID, "Ana", "6A")
	require.NoError(t, err)
	require.Equal(t, "6A", st.Kelas)

	_, err = s.UpdateStudent(ctx, a.ID, "Budi", "6A")
	require.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = s.UpdateStudent(ctx, 999, "Citra", "6A")
	require.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestSearchStudents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		mustStudent(t, s, "Siswa "+string(rune('A'+i)), "5A")
	}
	mustStudent(t, s, "Budi_Santoso", "5B")

	page, err := s.SearchStudents(ctx, "", 2, 10)
	require.NoError(t, err)
	require.Equal(t, 13, page.Total)
	require.Len(t, page.Students, 3)

	all, err := s.SearchStudents(ctx, "", 1, 0)
	require.NoError(t, err)
	require.Len(t, all.Students, 13)

	found, err := s.SearchStudents(ctx, "siswa b", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, found.Total)
	require.Equal(t, "Siswa B", found.Students[0].Nama)

	// "_" is matched literally, not as a wildcard
	literal, err := s.SearchStudents(ctx, "i_S", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, literal.Total)
}

func TestImportStudentsAllowsDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustStudent(t, s, "Ana", "5A")

	n, err := s.ImportStudents(ctx, []StudentRow{{Line: 2, Nama: "Ana", Kelas: "5A"}, {Line: 3, Nama: "Budi", Kelas: "5B"}})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	students, err := s.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
}

func TestAbsenceCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustStudent(t, s, "Ana", "5A")
	b := mustStudent(t, s, "Budi", "5B")
	mustStudent(t, s, "Citra", "5C")
	for i, d := range []string{"2024-09-30", "2024-10-01", "2024-10-02"} {
		st := models.StatusAbsent
		if i == 0 {
			st = models.StatusSick
		}
		require.NoError(t, s.ReplaceDay(ctx, date(t, d), map[int64]models.Status{a.ID: models.StatusAbsent, b.ID: st}))
	}

	counts, err := s.AbsenceCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.AbsenceCount{
		{StudentID: a.ID, Nama: "Ana", Kelas: "5A", Count: 3},
		{StudentID: b.ID, Nama: "Budi", Kelas: "5B", Count: 2},
	}, counts)
}

func TestEnsureUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.EnsureUser(ctx, "walikelas", "hash1", models.RoleWalikelas)
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.EnsureUser(ctx, "walikelas", "hash2", models.RoleSekretaris)
	require.NoError(t, err)
	require.False(t, created)

	u, err := s.GetUserByUsername(ctx, "walikelas")
	require.NoError(t, err)
	require.Equal(t, "hash1", u.PasswordHash)
	require.Equal(t, models.RoleWalikelas, u.Role)

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u, byID)

	_, err = s.GetUserByUsername(ctx, "nobody")
	require.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
