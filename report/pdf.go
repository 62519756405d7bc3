package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"absensi-server-go/attendance"
	"absensi-server-go/models"
)

// GoFPDF draws the recap table directly with gofpdf
type GoFPDF struct {
	Now func() time.Time // footer timestamp, defaults to time.Now
}

func (g GoFPDF) PDF(_ context.Context, recap *attendance.Recap) ([]byte, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // UTF-8 names -> cp1252 core font
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Rekap Absensi %s %d", MonthName(recap.Month), recap.Year)))
	pdf.Ln(14)

	if recap.Holiday {
		pdf.SetFont("Arial", "", 12)
		pdf.Cell(0, 10, tr(HolidayMessage(recap)))
		pdf.Ln(12)
	} else {
		widths := []float64{12, 70, 28, 20, 20, 20, 20}
		headers := []string{"No", "Nama", "Kelas"}
		for _, st := range models.AllStatuses {
			headers = append(headers, st.Label())
		}

		pdf.SetFont("Arial", "B", 11)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for i, s := range recap.Students {
			cells := []string{
				fmt.Sprint(i + 1), tr(s.Nama), tr(s.Kelas),
				fmt.Sprint(s.Totals.Present), fmt.Sprint(s.Totals.Absent),
				fmt.Sprint(s.Totals.Excused), fmt.Sprint(s.Totals.Sick),
			}
			for j, c := range cells {
				align := "C"
				if j == 1 || j == 2 {
					align = "L"
				}
				pdf.CellFormat(widths[j], 7, c, "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 10, fmt.Sprintf("Dibuat pada: %s", now().Format("02-01-2006 15:04:05")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render recap pdf: %w", err)
	}
	return buf.Bytes(), nil
}
