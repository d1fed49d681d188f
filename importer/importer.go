/*
Package importer reads bulk spreadsheets of attendance points, safety
points and drivers.

FORMAT:
  Every workbook carries its rows on a sheet named "data". Row 1 holds
  the headers, which must match exactly; data starts on row 2. Dates are
  written as YYYYMMDD. A driver import may also come as a zip archive
  containing drivers/drivers.xlsx.

ERRORS:
  A missing sheet or wrong headers rejects the whole file with an
  hr.ValidationError on the "file" field. Bad individual rows are
  skipped and reported as RowError values alongside the good rows.

SEE ALSO:
  - operations/imports.go: Applies rows through the normal assignment path
*/
package importer

import (
	"archive/zip"
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"github.com/warp/division-ops/hr"
)

// Sheet is the worksheet every import reads.
const Sheet = "data"

// DriverArchivePath is the workbook location inside a driver zip.
const DriverArchivePath = "drivers/drivers.xlsx"

const dateLayout = "20060102"

var (
	AttendanceHeaders = []string{"employee_id", "incident_date", "reason", "exemption", "assigned_by"}
	SafetyHeaders     = []string{"employee_id", "incident_date", "issued_date", "reason", "assigned_by"}
	DriverHeaders     = []string{"last_name", "first_name", "employee_id", "position", "hire_date",
		"application_date", "classroom_date", "company", "is_partime", "primary_phone", "secondary_phone", "SS"}
)

// RowError reports a rejected spreadsheet row (1-based, as shown in Excel).
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// AttendanceRow is one attendance point to assign.
type AttendanceRow struct {
	Row          int
	EmployeeID   int64
	IncidentDate time.Time
	Reason       hr.AttendanceReason
	Exemption    hr.Exemption
	AssignedBy   int64
}

// SafetyRow is one safety point to assign.
type SafetyRow struct {
	Row          int
	EmployeeID   int64
	IncidentDate time.Time
	// IssuedDate is zero when the column is empty.
	IssuedDate time.Time
	Reason     hr.SafetyReason
	AssignedBy int64
}

// DriverRow is one employee to create.
type DriverRow struct {
	Row             int
	EmployeeID      int64
	FirstName       string
	LastName        string
	Position        string
	HireDate        time.Time
	ApplicationDate time.Time
	ClassroomDate   time.Time
	Company         string
	IsPartTime      bool
	PrimaryPhone    string
	SecondaryPhone  string
}

// ReadAttendance parses an attendance workbook.
func ReadAttendance(r io.Reader) ([]AttendanceRow, []RowError, error) {
	rows, err := readSheet(r, AttendanceHeaders)
	if err != nil {
		return nil, nil, err
	}

	var out []AttendanceRow
	var rejected []RowError
	for i, row := range rows {
		if blank(row) {
			continue
		}
		p := rowParser{row: row, line: i + 2}
		rec := AttendanceRow{
			Row:          p.line,
			EmployeeID:   p.id(0, "employee_id"),
			IncidentDate: p.date(1, "incident_date"),
			Reason:       hr.AttendanceReason(p.text(2)),
			Exemption:    hr.Exemption(p.text(3)),
			AssignedBy:   p.optionalID(4, "assigned_by"),
		}
		if !rec.Reason.Valid() {
			p.fail("unknown reason %q", rec.Reason)
		}
		if !rec.Exemption.Valid() {
			p.fail("unknown exemption %q", rec.Exemption)
		}
		if p.err != nil {
			rejected = append(rejected, *p.err)
			continue
		}
		out = append(out, rec)
	}
	return out, rejected, nil
}

// ReadSafetyPoints parses a safety point workbook.
func ReadSafetyPoints(r io.Reader) ([]SafetyRow, []RowError, error) {
	rows, err := readSheet(r, SafetyHeaders)
	if err != nil {
		return nil, nil, err
	}

	var out []SafetyRow
	var rejected []RowError
	for i, row := range rows {
		if blank(row) {
			continue
		}
		p := rowParser{row: row, line: i + 2}
		rec := SafetyRow{
			Row:          p.line,
			EmployeeID:   p.id(0, "employee_id"),
			IncidentDate: p.date(1, "incident_date"),
			IssuedDate:   p.optionalDate(2, "issued_date"),
			Reason:       hr.SafetyReason(p.text(3)),
			AssignedBy:   p.optionalID(4, "assigned_by"),
		}
		if !rec.Reason.Valid() {
			p.fail("unknown reason %q", rec.Reason)
		}
		if p.err != nil {
			rejected = append(rejected, *p.err)
			continue
		}
		out = append(out, rec)
	}
	return out, rejected, nil
}

// ReadDrivers parses a driver workbook, bare or inside a zip archive.
func ReadDrivers(r io.Reader) ([]DriverRow, []RowError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read driver import")
	}
	if book, ok := driverWorkbookFromArchive(data); ok {
		data = book
	}

	rows, err := readSheet(bytes.NewReader(data), DriverHeaders)
	if err != nil {
		return nil, nil, err
	}

	var out []DriverRow
	var rejected []RowError
	seen := make(map[int64]int)
	for i, row := range rows {
		if blank(row) {
			continue
		}
		p := rowParser{row: row, line: i + 2}
		rec := DriverRow{
			Row:             p.line,
			LastName:        properName(p.required(0, "last_name")),
			FirstName:       properName(p.required(1, "first_name")),
			EmployeeID:      p.id(2, "employee_id"),
			Position:        strings.ToLower(p.text(3)),
			HireDate:        p.date(4, "hire_date"),
			ApplicationDate: p.date(5, "application_date"),
			ClassroomDate:   p.date(6, "classroom_date"),
			Company:         p.text(7),
			IsPartTime:      strings.EqualFold(p.text(8), "true"),
			PrimaryPhone:    p.text(9),
			SecondaryPhone:  p.text(10),
		}
		if prev, dup := seen[rec.EmployeeID]; dup && p.err == nil {
			p.fail("employee_id %d already on row %d", rec.EmployeeID, prev)
		}
		if p.err != nil {
			rejected = append(rejected, *p.err)
			continue
		}
		seen[rec.EmployeeID] = p.line
		out = append(out, rec)
	}
	return out, rejected, nil
}

// readSheet returns the data rows after checking the header row.
func readSheet(r io.Reader, headers []string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, hr.Invalid("file", "File must be an Excel workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(Sheet)
	if err != nil {
		if _, missing := err.(excelize.ErrSheetNotExist); missing {
			return nil, hr.Invalid("file", "No sheet named %q", Sheet)
		}
		return nil, errors.Wrapf(err, "read sheet %q", Sheet)
	}
	if len(rows) == 0 || !headersMatch(rows[0], headers) {
		return nil, hr.Invalid("file", "Headers are incorrect, expected %s", strings.Join(headers, ", "))
	}
	return rows[1:], nil
}

func headersMatch(got, want []string) bool {
	// GetRows drops trailing empty cells.
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func driverWorkbookFromArchive(data []byte) ([]byte, bool) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, false
	}
	for _, entry := range zr.File {
		if entry.Name != DriverArchivePath {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, false
		}
		defer rc.Close()
		book, err := io.ReadAll(rc)
		if err != nil {
			return nil, false
		}
		return book, true
	}
	return nil, false
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// properName turns "SMITH" or "smith" into "Smith".
func properName(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// rowParser keeps the first problem found on a row.
type rowParser struct {
	row  []string
	line int
	err  *RowError
}

func (p *rowParser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = &RowError{Row: p.line, Reason: errors.Errorf(format, args...).Error()}
	}
}

func (p *rowParser) text(col int) string {
	if col >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[col])
}

func (p *rowParser) required(col int, name string) string {
	v := p.text(col)
	if v == "" {
		p.fail("%s is required", name)
	}
	return v
}

func (p *rowParser) id(col int, name string) int64 {
	raw := p.required(col, name)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		p.fail("%s %q is not an employee number", name, raw)
		return 0
	}
	return id
}

func (p *rowParser) optionalID(col int, name string) int64 {
	if p.text(col) == "" {
		return 0
	}
	return p.id(col, name)
}

func (p *rowParser) date(col int, name string) time.Time {
	raw := p.required(col, name)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		p.fail("%s %q is not a YYYYMMDD date", name, raw)
		return time.Time{}
	}
	return t
}

// optionalDate is date for a column that may be left empty.
func (p *rowParser) optionalDate(col int, name string) time.Time {
	if p.text(col) == "" {
		return time.Time{}
	}
	return p.date(col, name)
}
