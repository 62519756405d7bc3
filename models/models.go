package models

import "time"

// DateLayout is the storage and query-string form of an attendance date.
const DateLayout = "2006-01-02"

// Student represents a student on the class roster
type Student struct {
	ID    int64  `db:"id" json:"id"`       // Auto-increment student id
	Nama  string `db:"nama" json:"nama"`   // Student name
	Kelas string `db:"kelas" json:"kelas"` // Class label, e.g. "5A"
}

// AttendanceRecord is one status for one student on one date
type AttendanceRecord struct {
	ID        int64  `db:"id" json:"id"`
	StudentID int64  `db:"student_id" json:"student_id"`
	Tanggal   string `db:"tanggal" json:"tanggal"` // YYYY-MM-DD
	Status    Status `db:"status" json:"status"`
}

// Date parses Tanggal. Records written by the store always parse.
func (r AttendanceRecord) Date() (time.Time, error) {
	return time.Parse(DateLayout, r.Tanggal)
}

// Totals holds per-status counts for one student over one month
type Totals struct {
	Present int `json:"hadir"`
	Absent  int `json:"alfa"`
	Excused int `json:"izin"`
	Sick    int `json:"sakit"`
}

// Add counts one record with the given status.
func (t *Totals) Add(s Status) {
	switch s {
	case StatusPresent:
		t.Present++
	case StatusAbsent:
		t.Absent++
	case StatusExcused:
		t.Excused++
	case StatusSick:
		t.Sick++
	}
}

// Sum is the number of recorded days behind the counts.
func (t Totals) Sum() int {
	return t.Present + t.Absent + t.Excused + t.Sick
}

// StudentTotals pairs a student with their monthly totals
type StudentTotals struct {
	Student
	Totals Totals `json:"totals"`
}

// AbsenceCount is a student's all-time number of Absent records
type AbsenceCount struct {
	StudentID int64  `db:"student_id"`
	Nama      string `db:"nama"`
	Kelas     string `db:"kelas"`
	Count     int    `db:"absences"`
}
