package db

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"absensi-server-go/apperrors"
)

// Header names the import looks for, compared case-insensitively.
const (
	ColumnNama  = "Nama"
	ColumnKelas = "Kelas"
)

const (
	maxXLSRows = 100000 // rows read from an .xls sheet
	minXLSCols = 16     // columns scanned when a row has no ROW record
)

// StudentRow is one parsed spreadsheet row. Line is the 1-based sheet row.
type StudentRow struct {
	Line  int
	Nama  string
	Kelas string
}

// AllowedImportFile reports whether filename has a spreadsheet extension the
// importer can read.
func AllowedImportFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// ReadStudentRows parses an uploaded roster. The first row is the header and
// must contain Nama and Kelas columns. Any malformed row fails the whole file.
func ReadStudentRows(file io.Reader, filename string) ([]StudentRow, error) {
	if !AllowedImportFile(filename) {
		return nil, apperrors.Validation("file harus berformat .xlsx atau .xls")
	}
	rows, err := readSheet(file, filename)
	if err != nil {
		return nil, apperrors.Import(err)
	}
	students, err := parseStudentRows(rows)
	if err != nil {
		return nil, apperrors.Import(err)
	}
	return students, nil
}

func readSheet(file io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if strings.ToLower(filepath.Ext(filename)) == ".xls" {
		return readXLSSheet(data)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	// Data is expected on the first sheet
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	return rows, nil
}

// readXLSSheet returns the rows of the first sheet of a BIFF workbook,
// indexed by sheet row so gaps stay empty.
func readXLSSheet(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("failed to read xls file: %v", r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls file: %w", err)
	}
	if workbook == nil || workbook.NumSheets() == 0 {
		return nil, errors.New("excel file does not contain any sheets")
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("excel file does not contain any sheets")
	}

	last := int(sheet.MaxRow)
	if last >= maxXLSRows {
		last = maxXLSRows - 1
	}
	rows = make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		rows = append(rows, xlsRow(sheet, i))
	}
	return rows, nil
}

// xlsRow reads one row. WorkSheet.Row dereferences a nil row for indexes
// the sheet never stored, so those come back empty.
func xlsRow(sheet *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()
	row := sheet.Row(i)
	width := row.LastCol()
	if width < minXLSCols {
		width = minXLSCols
	}
	cells = make([]string, 0, width)
	for c := 0; c < width; c++ {
		cells = append(cells, row.Col(c))
	}
	for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseStudentRows(rows [][]string) ([]StudentRow, error) {
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	namaIdx, kelasIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case strings.ToLower(ColumnNama):
			namaIdx = i
		case strings.ToLower(ColumnKelas):
			kelasIdx = i
		}
	}
	if namaIdx < 0 || kelasIdx < 0 {
		return nil, fmt.Errorf("header must contain %q and %q columns", ColumnNama, ColumnKelas)
	}

	students := []StudentRow{}
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		nama, kelas := cell(row, namaIdx), cell(row, kelasIdx)
		if nama == "" {
			return nil, fmt.Errorf("row %d: %s is empty", line, ColumnNama)
		}
		if kelas == "" {
			return nil, fmt.Errorf("row %d: %s is empty", line, ColumnKelas)
		}
		students = append(students, StudentRow{Line: line, Nama: nama, Kelas: kelas})
	}
	return students, nil
}
