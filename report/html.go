package report

import (
	"bytes"
	"html/template"
	"io"

	"absensi-server-go/attendance"
)

var recapTemplate = template.Must(template.New("rekap").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Rekap Absensi {{.MonthName}} {{.Recap.Year}}</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #444; padding: 4px 8px; }
td.n { text-align: center; }
</style>
</head>
<body>
<h1>Rekap Absensi {{.MonthName}} {{.Recap.Year}}</h1>
{{if .Recap.Holiday}}<p class="holiday">{{.Holiday}}</p>{{else}}
<table>
<thead><tr><th>No</th><th>Nama</th><th>Kelas</th><th>Hadir</th><th>Alfa</th><th>Izin</th><th>Sakit</th></tr></thead>
<tbody>
{{range $i, $s := .Recap.Students}}<tr><td class="n">{{inc $i}}</td><td>{{$s.Nama}}</td><td>{{$s.Kelas}}</td><td class="n">{{$s.Totals.Present}}</td><td class="n">{{$s.Totals.Absent}}</td><td class="n">{{$s.Totals.Excused}}</td><td class="n">{{$s.Totals.Sick}}</td></tr>
{{end}}</tbody>
</table>{{end}}
</body>
</html>
`))

type htmlView struct {
	Recap     *attendance.Recap
	MonthName string
	Holiday   string
}

// HTML writes the recap page. Holiday recaps show the empty-state message
// instead of the table.
func HTML(w io.Writer, recap *attendance.Recap) error {
	return recapTemplate.Execute(w, htmlView{
		Recap:     recap,
		MonthName: MonthName(recap.Month),
		Holiday:   HolidayMessage(recap),
	})
}

// HTMLBytes is HTML into a byte slice.
func HTMLBytes(recap *attendance.Recap) ([]byte, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, recap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
