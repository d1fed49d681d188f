package operations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/document"
	"github.com/warp/division-ops/hr"
)

// =============================================================================
// DOCUMENT CONTENT
// =============================================================================

// DocumentBuilder turns a stored record into document content.
type DocumentBuilder struct {
	Store   Store
	Engine  *discipline.Engine
	Company string
}

// NewDocumentBuilder creates a builder reading from store.
func NewDocumentBuilder(store Store, engine *discipline.Engine, company string) *DocumentBuilder {
	if engine == nil {
		engine = discipline.New(nil)
	}
	return &DocumentBuilder{Store: store, Engine: engine, Company: company}
}

// Build loads the referenced record and lays out its document.
func (b *DocumentBuilder) Build(ctx context.Context, ref hr.RecordRef) (document.Record, error) {
	switch ref.Kind {
	case hr.KindAttendance:
		return b.attendance(ctx, ref.ID)
	case hr.KindSafetyPoint:
		return b.safety(ctx, ref.ID)
	case hr.KindCounseling:
		return b.counseling(ctx, ref.ID)
	case hr.KindSettlement:
		return b.settlement(ctx, ref.ID)
	}
	return document.Record{}, fmt.Errorf("no document layout for %q", ref.Kind)
}

func (b *DocumentBuilder) header(ctx context.Context, title string, employeeID int64) (document.Record, error) {
	emp, err := b.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return document.Record{}, err
	}
	return document.Record{
		Title:   title,
		Company: b.Company,
		Employee: document.Employee{
			Number:   emp.ID,
			Name:     emp.FullName(),
			Position: emp.Position,
			HireDate: emp.HireDate,
		},
	}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("01/02/2006")
}

func signatureFields(sig hr.Signature) []document.Field {
	status := "Unsigned"
	switch {
	case sig.Refused:
		status = "Employee refused to sign"
	case sig.Signed:
		status = "Signed"
	}
	fields := []document.Field{{Label: "Signature", Value: status}}
	if sig.Comments != "" {
		fields = append(fields, document.Field{Label: "Employee Comments", Value: sig.Comments})
	}
	return fields
}

func historyTable(heading string, buckets []discipline.Bucket) *document.Table {
	t := &document.Table{Heading: heading, Columns: []string{"Occurrence", "Count"}}
	for _, bk := range buckets {
		t.Rows = append(t.Rows, []string{bk.Label, fmt.Sprint(bk.Count)})
	}
	return t
}

func (b *DocumentBuilder) attendance(ctx context.Context, id int64) (document.Record, error) {
	rec, err := b.Store.GetAttendance(ctx, id)
	if err != nil {
		return document.Record{}, err
	}
	doc, err := b.header(ctx, "Attendance Point", rec.EmployeeID)
	if err != nil {
		return document.Record{}, err
	}
	records, err := b.Store.ListAttendance(ctx, rec.EmployeeID)
	if err != nil {
		return document.Record{}, err
	}

	exemption := rec.Exemption.String()
	if !rec.Exemption.IsExempt() {
		exemption = "None"
	}
	doc.Fields = []document.Field{
		{Label: "Incident Date", Value: formatDate(rec.IncidentDate)},
		{Label: "Issued Date", Value: formatDate(rec.IssuedDate)},
		{Label: "Reason", Value: rec.Reason.String()},
		{Label: "Exemption", Value: exemption},
		{Label: "Points", Value: rec.Points.String()},
		{Label: "Total Points", Value: b.Engine.TotalAttendancePoints(records, rec.IncidentDate, 0).String()},
	}
	doc.Fields = append(doc.Fields, signatureFields(rec.Signature)...)
	doc.Table = historyTable("Attendance History", b.Engine.AttendanceHistory(records, rec.IncidentDate).Buckets())
	return doc, nil
}

func (b *DocumentBuilder) safety(ctx context.Context, id int64) (document.Record, error) {
	rec, err := b.Store.GetSafetyPoint(ctx, id)
	if err != nil {
		return document.Record{}, err
	}
	doc, err := b.header(ctx, "Safety Point", rec.EmployeeID)
	if err != nil {
		return document.Record{}, err
	}
	records, err := b.Store.ListSafetyPoints(ctx, rec.EmployeeID)
	if err != nil {
		return document.Record{}, err
	}

	doc.Fields = []document.Field{
		{Label: "Incident Date", Value: formatDate(rec.IncidentDate)},
		{Label: "Issued Date", Value: formatDate(rec.IssuedDate)},
		{Label: "Reason", Value: rec.Reason.String()},
		{Label: "Points", Value: fmt.Sprint(rec.Points)},
		{Label: "Total Points", Value: fmt.Sprint(b.Engine.TotalSafetyPoints(records, rec.IncidentDate, 0))},
	}
	doc.Fields = append(doc.Fields, signatureFields(rec.Signature)...)
	if rec.Details != "" {
		doc.Sections = []document.Section{{Heading: "Details", Body: rec.Details}}
	}
	return doc, nil
}

func (b *DocumentBuilder) counseling(ctx context.Context, id int64) (document.Record, error) {
	c, err := b.Store.GetCounseling(ctx, id)
	if err != nil {
		return document.Record{}, err
	}
	doc, err := b.header(ctx, "Employee Counseling", c.EmployeeID)
	if err != nil {
		return document.Record{}, err
	}

	doc.Fields = []document.Field{
		{Label: "Issued Date", Value: formatDate(c.IssuedDate)},
		{Label: "Action Taken", Value: c.ActionType.String()},
	}
	if c.HearingAt != nil {
		doc.Fields = append(doc.Fields, document.Field{Label: "Hearing", Value: c.HearingAt.Format("01/02/2006 03:04 PM")})
	}
	doc.Fields = append(doc.Fields, signatureFields(c.Signature)...)
	doc.Sections = []document.Section{
		{Heading: "Conduct", Body: c.Conduct},
		{Heading: "Conversation", Body: c.Conversation},
	}
	return doc, nil
}

func (b *DocumentBuilder) settlement(ctx context.Context, id int64) (document.Record, error) {
	st, err := b.Store.GetSettlement(ctx, id)
	if err != nil {
		return document.Record{}, err
	}
	doc, err := b.header(ctx, "Settlement Agreement", st.EmployeeID)
	if err != nil {
		return document.Record{}, err
	}
	doc.Fields = []document.Field{{Label: "Issued Date", Value: formatDate(st.IssuedDate)}}
	doc.Sections = []document.Section{{Heading: "Terms", Body: st.Details}}
	return doc, nil
}

// AttendanceReport lays out the attendance standing of an employee as of
// asOf: the bucketed history, the windowed total and the active records.
func (b *DocumentBuilder) AttendanceReport(ctx context.Context, employeeID int64, asOf time.Time) (document.Record, error) {
	doc, err := b.header(ctx, "Attendance History", employeeID)
	if err != nil {
		return document.Record{}, err
	}
	records, err := b.Store.ListAttendance(ctx, employeeID)
	if err != nil {
		return document.Record{}, err
	}
	counseling, err := b.Store.ListCounseling(ctx, employeeID)
	if err != nil {
		return document.Record{}, err
	}
	asOf = hr.Truncate(asOf)

	doc.Fields = []document.Field{
		{Label: "As Of", Value: formatDate(asOf)},
		{Label: "Total Points", Value: b.Engine.TotalAttendancePoints(records, asOf, 0).String()},
	}
	if warned := discipline.PriorWrittenWarning(counseling); warned != nil {
		doc.Fields = append(doc.Fields, document.Field{Label: "Written Warning Issued", Value: formatDate(*warned)})
	}
	doc.Table = historyTable("Occurrences", b.Engine.AttendanceHistory(records, asOf).Buckets())

	var log []string
	for _, r := range records {
		if !r.IsActive || r.IncidentDate.After(asOf) {
			continue
		}
		log = append(log, fmt.Sprintf("%s  %s  %s", formatDate(r.IncidentDate), r.Reason, r.Points))
	}
	if len(log) > 0 {
		doc.Sections = []document.Section{{Heading: "Incidents", Body: strings.Join(log, "\n")}}
	}
	return doc, nil
}

// =============================================================================
// STORED DOCUMENTS
// =============================================================================

// GetDocument returns the generated document of a record.
func (s *Service) GetDocument(ctx context.Context, ref hr.RecordRef) (*hr.Document, error) {
	doc, err := s.store.GetDocument(ctx, ref)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, hr.NotFound("document", ref.ID)
	}
	return doc, nil
}

// RegenerateDocument queues a fresh document for a record, e.g. after a
// failed generation.
func (s *Service) RegenerateDocument(ctx context.Context, ref hr.RecordRef) error {
	return s.run(ctx, func(tx Store, out *outbox) error {
		employeeID, err := recordOwner(ctx, tx, ref)
		if err != nil {
			return err
		}
		if err := tx.DeleteDocument(ctx, ref); err != nil {
			return err
		}
		out.add(documentEvent(employeeID, ref.Kind, ref.ID))
		return nil
	})
}

// recordOwner returns the employee a document-bearing record belongs to.
func recordOwner(ctx context.Context, tx Store, ref hr.RecordRef) (int64, error) {
	switch ref.Kind {
	case hr.KindAttendance:
		r, err := tx.GetAttendance(ctx, ref.ID)
		if err != nil {
			return 0, err
		}
		return r.EmployeeID, nil
	case hr.KindSafetyPoint:
		r, err := tx.GetSafetyPoint(ctx, ref.ID)
		if err != nil {
			return 0, err
		}
		return r.EmployeeID, nil
	case hr.KindCounseling:
		r, err := tx.GetCounseling(ctx, ref.ID)
		if err != nil {
			return 0, err
		}
		return r.EmployeeID, nil
	case hr.KindSettlement:
		r, err := tx.GetSettlement(ctx, ref.ID)
		if err != nil {
			return 0, err
		}
		return r.EmployeeID, nil
	}
	return 0, hr.Invalid("kind", "unknown record kind %q", string(ref.Kind))
}
