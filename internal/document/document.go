// Package document defines the document and revision model persisted
// by the store.
package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RevisionSource identifies what produced a revision.
type RevisionSource string

const (
	// SourceManual is a revision saved directly by the user.
	SourceManual RevisionSource = "manual"
	// SourceAssist is a revision accepted from an AI-assisted rewrite.
	SourceAssist RevisionSource = "assist"
)

// Valid reports whether s is a known revision source.
func (s RevisionSource) Valid() bool {
	return s == SourceManual || s == SourceAssist
}

// Document is a markdown document tracked by markpad.
// Body always holds the most recently saved content; the unsaved
// editor buffer lives outside the store and is diffed against Body.
type Document struct {
	ID        int64
	GUID      string
	Title     string
	Path      string // original file path, empty for scratch documents
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Revision is one saved snapshot of a document's body.
// Seq increases by one per revision within a document.
type Revision struct {
	ID           int64
	DocumentGUID string
	Seq          int
	Body         string
	Summary      string // assist change summary, empty for manual saves
	Source       RevisionSource
	CreatedAt    time.Time
}

// New creates a document with a fresh GUID and timestamps.
func New(title, path, body string) *Document {
	now := time.Now().UTC()
	return &Document{
		GUID:      uuid.NewString(),
		Title:     title,
		Path:      path,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Repository persists documents and their revision history.
type Repository interface {
	// Save inserts a new document (ID == 0) or updates an existing one.
	Save(doc *Document) error
	// FindByGUID returns the document with the given GUID.
	// Returns *NotFoundError if no such document exists.
	FindByGUID(guid string) (*Document, error)
	// FindByPath returns the document tracking the given file path.
	// Returns *NotFoundError if the path is not tracked.
	FindByPath(path string) (*Document, error)
	// List returns all documents ordered by last update, newest first.
	List() ([]*Document, error)
	// Delete soft-deletes a document and hides its revisions.
	Delete(guid string) error
	// SaveRevision appends a revision snapshot, assigning the next Seq.
	SaveRevision(rev *Revision) error
	// Revisions returns a document's revisions ordered by Seq ascending.
	Revisions(guid string) ([]*Revision, error)
	// LatestRevision returns the highest-Seq revision for a document.
	// Returns *NotFoundError if the document has no revisions.
	LatestRevision(guid string) (*Revision, error)
}

// NotFoundError indicates a document or revision lookup missed.
type NotFoundError struct {
	GUID string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("document not found for path %q", e.Path)
	}
	return fmt.Sprintf("document %s not found", e.GUID)
}
