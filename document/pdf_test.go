package document_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/division-ops/document"
	"github.com/warp/division-ops/hr"
)

func sampleRecord() document.Record {
	return document.Record{
		Title:   "Attendance Point",
		Company: "Transit Division",
		Employee: document.Employee{
			Number:   1042,
			Name:     "Jane Doe",
			Position: "Operator",
			HireDate: hr.Date(2019, 4, 15),
		},
		Fields: []document.Field{
			{Label: "Incident Date", Value: "06/01/2024"},
			{Label: "Reason", Value: "Unexcused Absence"},
			{Label: "Points", Value: "1"},
		},
		Table: &document.Table{
			Heading: "Attendance History",
			Columns: []string{"Unexcused", "Late", "No Call/No Show"},
			Rows:    [][]string{{"2", "1"}},
		},
		Sections: []document.Section{
			{Heading: "Conduct", Body: "Café schedule reached 7 points; written warning issued."},
		},
	}
}

func TestPDFGenerator_ProducesPDF(t *testing.T) {
	g := document.NewPDFGenerator()

	out, err := g.Generate(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "missing PDF header")
	assert.True(t, bytes.Contains(out, []byte("%%EOF")), "missing PDF trailer")
	assert.Equal(t, "application/pdf", g.ContentType())
}

func TestPDFGenerator_MinimalRecord(t *testing.T) {
	g := document.NewPDFGenerator()

	out, err := g.Generate(context.Background(), document.Record{Title: "Settlement"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestPDFGenerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := document.NewPDFGenerator().Generate(ctx, sampleRecord())
	assert.ErrorIs(t, err, context.Canceled)
}
