package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// DOCUMENTS (operations.DocumentStore interface)
// =============================================================================

// documentTables maps a record kind to the table carrying its
// has_document flag.
var documentTables = map[hr.RecordKind]string{
	hr.KindAttendance:  "attendance_points",
	hr.KindSafetyPoint: "safety_points",
	hr.KindCounseling:  "counseling",
	hr.KindSettlement:  "settlements",
}

func documentTable(kind hr.RecordKind) (string, error) {
	table, ok := documentTables[kind]
	if !ok {
		return "", fmt.Errorf("no document table for kind %q", kind)
	}
	return table, nil
}

// SaveDocument stores the document of a record, replacing any previous
// one, and sets the record's has_document flag.
func (s *Store) SaveDocument(ctx context.Context, doc hr.Document) error {
	table, err := documentTable(doc.Ref.Kind)
	if err != nil {
		return err
	}
	return s.atomic(ctx, func(tx *Store) error {
		res, err := tx.q.ExecContext(ctx, `UPDATE `+table+` SET has_document = 1 WHERE id = ?`, doc.Ref.ID)
		if err != nil {
			return fmt.Errorf("failed to flag %s %d: %w", doc.Ref.Kind, doc.Ref.ID, err)
		}
		if err := mustAffect(res, string(doc.Ref.Kind), doc.Ref.ID); err != nil {
			return err
		}

		_, err = tx.q.ExecContext(ctx, `
			INSERT INTO documents (key, kind, record_id, content_type, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(kind, record_id) DO UPDATE SET
				key = excluded.key,
				content_type = excluded.content_type,
				content = excluded.content,
				created_at = excluded.created_at
		`, doc.Key, string(doc.Ref.Kind), doc.Ref.ID, doc.ContentType, doc.Content, formatTime(doc.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to save document of %s %d: %w", doc.Ref.Kind, doc.Ref.ID, err)
		}
		return nil
	})
}

// GetDocument returns the document of a record, or nil.
func (s *Store) GetDocument(ctx context.Context, ref hr.RecordRef) (*hr.Document, error) {
	var (
		doc       hr.Document
		kind      string
		createdAt string
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT key, kind, record_id, content_type, content, created_at
		FROM documents WHERE kind = ? AND record_id = ?
	`, string(ref.Kind), ref.ID).Scan(&doc.Key, &kind, &doc.Ref.ID, &doc.ContentType, &doc.Content, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document of %s %d: %w", ref.Kind, ref.ID, err)
	}

	var d decoder
	doc.Ref.Kind = hr.RecordKind(kind)
	doc.CreatedAt = d.time("created_at", createdAt)
	if d.err != nil {
		return nil, d.err
	}
	return &doc, nil
}

// DeleteDocument removes the document of a record and clears its
// has_document flag. Deleting a missing document is a no-op.
func (s *Store) DeleteDocument(ctx context.Context, ref hr.RecordRef) error {
	table, err := documentTable(ref.Kind)
	if err != nil {
		return err
	}
	return s.atomic(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx,
			`DELETE FROM documents WHERE kind = ? AND record_id = ?`, string(ref.Kind), ref.ID,
		); err != nil {
			return fmt.Errorf("failed to delete document of %s %d: %w", ref.Kind, ref.ID, err)
		}
		if _, err := tx.q.ExecContext(ctx, `UPDATE `+table+` SET has_document = 0 WHERE id = ?`, ref.ID); err != nil {
			return fmt.Errorf("failed to unflag %s %d: %w", ref.Kind, ref.ID, err)
		}
		return nil
	})
}
