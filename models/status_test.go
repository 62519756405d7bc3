package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for code, want := range map[string]Status{"H": StatusPresent, "A": StatusAbsent, "I": StatusExcused, "S": StatusSick} {
		got, err := ParseStatus(code)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, code, got.Code())
	}
	for _, bad := range []string{"", "h", "X", "HA"} {
		_, err := ParseStatus(bad)
		require.Error(t, err, bad)
	}
}

func TestStatusSQLValue(t *testing.T) {
	v, err := StatusSick.Value()
	require.NoError(t, err)
	require.Equal(t, "S", v)

	_, err = Status(0).Value()
	require.Error(t, err)

	var s Status
	require.NoError(t, s.Scan([]byte("I")))
	require.Equal(t, StatusExcused, s)
	require.Error(t, s.Scan(int64(1)))
}

func TestRecordJSONUsesCodes(t *testing.T) {
	out, err := json.Marshal(AttendanceRecord{ID: 1, StudentID: 2, Tanggal: "2024-12-31", Status: StatusAbsent})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1,"student_id":2,"tanggal":"2024-12-31","status":"A"}`, string(out))
}

func TestTotals(t *testing.T) {
	var tot Totals
	for _, s := range []Status{StatusPresent, StatusPresent, StatusAbsent, StatusSick, Status(0)} {
		tot.Add(s)
	}
	require.Equal(t, Totals{Present: 2, Absent: 1, Sick: 1}, tot)
	require.Equal(t, 4, tot.Sum())
}
