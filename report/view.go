// Package report renders monthly attendance recaps as HTML and PDF.
package report

import (
	"context"
	"fmt"

	"absensi-server-go/attendance"
)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName is the Indonesian month name, or "" for an invalid month.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// PDFFilename is the attachment name of a monthly recap export.
func PDFFilename(year, month int) string {
	return fmt.Sprintf("rekap_absensi_%d_%d.pdf", year, month)
}

// HolidayMessage is the empty-state text for a recap without data.
func HolidayMessage(recap *attendance.Recap) string {
	if recap.Date != "" {
		return fmt.Sprintf("Tidak ada data kehadiran untuk tanggal %s. Hari libur.", recap.Date)
	}
	return fmt.Sprintf("Tidak ada data kehadiran untuk %s %d. Hari libur.", MonthName(recap.Month), recap.Year)
}

// Renderer turns a recap into a PDF document
type Renderer interface {
	PDF(ctx context.Context, recap *attendance.Recap) ([]byte, error)
}
