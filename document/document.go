/*
Package document renders disciplinary documents as PDF.

PURPOSE:
  Every attendance point, safety point, counseling and settlement gets a
  printable document employees sign. The operations service builds a
  Record describing the content and a Generator turns it into bytes.

LAYOUT:
  Title
  Employee block (name, number, position, hire date)
  Fields       label/value pairs, one per line
  Table        optional (e.g. attendance history buckets)
  Sections     headed paragraphs (conduct, conversation, details)
  Signature lines

SEE ALSO:
  - operations/documents.go: Record builders per kind
*/
package document

import (
	"context"
	"time"
)

// Field is one labelled value.
type Field struct {
	Label string
	Value string
}

// Section is a headed block of free text.
type Section struct {
	Heading string
	Body    string
}

// Table is a small grid.
type Table struct {
	Heading string
	Columns []string
	Rows    [][]string
}

// Employee identifies who the document is about.
type Employee struct {
	Number   int64
	Name     string
	Position string
	HireDate time.Time
}

// Record is the generator-independent content of a document.
type Record struct {
	Title    string
	Company  string
	Employee Employee
	Fields   []Field
	Table    *Table
	Sections []Section
}

// Generator renders a record.
type Generator interface {
	Generate(ctx context.Context, rec Record) ([]byte, error)
	ContentType() string
}
