package sqlite

import (
	"time"

	"github.com/zjrosen/markpad/internal/document"
)

// DocumentModel represents the database row for the documents table.
// Fields map directly to SQL columns with Unix timestamps for time values.
type DocumentModel struct {
	ID        int64
	GUID      string
	Title     string
	Path      string
	Body      string
	CreatedAt int64  // Unix timestamp
	UpdatedAt int64  // Unix timestamp
	DeletedAt *int64 // Unix timestamp, nullable
}

// toDocumentModel converts a domain Document to a database model.
func toDocumentModel(d *document.Document) *DocumentModel {
	return &DocumentModel{
		ID:        d.ID,
		GUID:      d.GUID,
		Title:     d.Title,
		Path:      d.Path,
		Body:      d.Body,
		CreatedAt: d.CreatedAt.Unix(),
		UpdatedAt: d.UpdatedAt.Unix(),
	}
}

// toDomain converts a database model back to a domain Document.
func (m *DocumentModel) toDomain() *document.Document {
	return &document.Document{
		ID:        m.ID,
		GUID:      m.GUID,
		Title:     m.Title,
		Path:      m.Path,
		Body:      m.Body,
		CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(m.UpdatedAt, 0).UTC(),
	}
}

// RevisionModel represents the database row for the revisions table.
type RevisionModel struct {
	ID           int64
	DocumentGUID string
	Seq          int
	Body         string
	Summary      string
	Source       string
	CreatedAt    int64 // Unix timestamp
}

// toRevisionModel converts a domain Revision to a database model.
func toRevisionModel(r *document.Revision) *RevisionModel {
	return &RevisionModel{
		ID:           r.ID,
		DocumentGUID: r.DocumentGUID,
		Seq:          r.Seq,
		Body:         r.Body,
		Summary:      r.Summary,
		Source:       string(r.Source),
		CreatedAt:    r.CreatedAt.Unix(),
	}
}

// toDomain converts a database model back to a domain Revision.
func (m *RevisionModel) toDomain() *document.Revision {
	return &document.Revision{
		ID:           m.ID,
		DocumentGUID: m.DocumentGUID,
		Seq:          m.Seq,
		Body:         m.Body,
		Summary:      m.Summary,
		Source:       document.RevisionSource(m.Source),
		CreatedAt:    time.Unix(m.CreatedAt, 0).UTC(),
	}
}
