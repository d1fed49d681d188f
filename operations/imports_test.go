package operations_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/division-ops/importer"
	"github.com/xuri/excelize/v2"
)

// workbook builds an import sheet from a header row and data rows.
func workbook(t *testing.T, headers []string, rows ...[]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", importer.Sheet))

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	all := append([][]any{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(importer.Sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

// =============================================================================
// IMPORTS
// =============================================================================

func TestImportDrivers_HiresEachRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	report, err := f.svc.ImportDrivers(ctx, manager, workbook(t, importer.DriverHeaders,
		[]any{"REYES", "DANA", 1042, "Operator", 20190401, 20190301, 20190315, "Warp", "false", "555-0100", "", ""},
		[]any{"BELL", "MARCUS", 1043, "Operator", 20200106, 20191201, 20191215, "Warp", "true", "", "", ""},
		[]any{"BELL", "MARCUS", 1043, "Operator", 20200106, 20191201, 20191215, "Warp", "true", "", "", ""},
		[]any{"SMITH", "", 1044, "Operator", 20200106, 20191201, 20191215, "Warp", "false", "", "", ""},
	))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Rejected, 2)

	emp := f.employee(t, 1043)
	assert.Equal(t, "Marcus Bell", emp.FullName())
	assert.True(t, emp.IsPartTime)
	require.NotNil(t, emp.ClassroomDate)
}

func TestImportAttendance_RunsTheDecision(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)

	rows := make([][]any, 0, 8)
	for day := 20; day <= 26; day++ {
		rows = append(rows, []any{driver, 20240500 + day, "0", "", supervisor})
	}
	rows = append(rows, []any{9999, 20240527, "0", "", ""})

	report, err := f.svc.ImportAttendance(ctx, manager, workbook(t, importer.AttendanceHeaders, rows...))
	require.NoError(t, err)

	assert.Equal(t, 7, report.Imported)
	require.Len(t, report.Rejected, 1, "unknown employee")
	assert.Equal(t, 9, report.Rejected[0].Row)

	counseling := f.activeCounseling(t, driver)
	require.Len(t, counseling, 1, "the seventh row issued a written warning")
	assert.Equal(t, supervisor, counseling[0].AssignedBy)
}

func TestImportSafetyPoints_DefaultsIssuedDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)

	report, err := f.svc.ImportSafetyPoints(ctx, manager, workbook(t, importer.SafetyHeaders,
		[]any{driver, 20240601, "", "0", ""},
	))
	require.NoError(t, err)
	require.Equal(t, 1, report.Imported, "rejected: %v", report.Rejected)

	points, err := f.svc.ListSafetyPoints(ctx, driver)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, manager, points[0].AssignedBy)
}

func TestImport_WrongHeadersRejectsFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ImportAttendance(context.Background(), manager, workbook(t, []string{"id", "date"}))

	requireValidation(t, err, "file")
}
