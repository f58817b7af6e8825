package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/markpad/internal/document"
)

// documentColumns is the list of columns to select for document queries.
const documentColumns = `id, guid, title, path, body, created_at, updated_at, deleted_at`

// revisionColumns is the list of columns to select for revision queries.
const revisionColumns = `id, document_guid, seq, body, summary, source, created_at`

// documentRepository implements document.Repository using SQLite.
type documentRepository struct {
	db *sql.DB
}

// newDocumentRepository creates a new documentRepository instance.
func newDocumentRepository(db *sql.DB) *documentRepository {
	return &documentRepository{db: db}
}

// Ensure documentRepository implements document.Repository.
var _ document.Repository = (*documentRepository)(nil)

// scanDocument scans a row into a DocumentModel.
func scanDocument(scanner interface{ Scan(...any) error }) (*DocumentModel, error) {
	var model DocumentModel
	err := scanner.Scan(
		&model.ID, &model.GUID, &model.Title, &model.Path, &model.Body,
		&model.CreatedAt, &model.UpdatedAt, &model.DeletedAt,
	)
	return &model, err
}

// scanRevision scans a row into a RevisionModel.
func scanRevision(scanner interface{ Scan(...any) error }) (*RevisionModel, error) {
	var model RevisionModel
	err := scanner.Scan(
		&model.ID, &model.DocumentGUID, &model.Seq, &model.Body,
		&model.Summary, &model.Source, &model.CreatedAt,
	)
	return &model, err
}

// Save persists a document.
// For new documents (ID == 0), inserts a new row and sets the document ID.
// For existing documents (ID > 0), updates the existing row.
func (r *documentRepository) Save(doc *document.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	model := toDocumentModel(doc)

	if doc.ID == 0 {
		result, err := r.db.Exec(
			`INSERT INTO documents (guid, title, path, body, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			model.GUID, model.Title, model.Path, model.Body, model.CreatedAt, model.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		doc.ID = id
		return nil
	}

	_, err := r.db.Exec(
		`UPDATE documents SET title = ?, path = ?, body = ?, updated_at = ? WHERE id = ?`,
		model.Title, model.Path, model.Body, model.UpdatedAt, model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

// FindByGUID retrieves a document by its GUID.
// Soft-deleted documents are not returned.
func (r *documentRepository) FindByGUID(guid string) (*document.Document, error) {
	row := r.db.QueryRow(
		`SELECT `+documentColumns+` FROM documents WHERE guid = ? AND deleted_at IS NULL`,
		guid,
	)
	model, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &document.NotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document by guid: %w", err)
	}
	return model.toDomain(), nil
}

// FindByPath retrieves the document tracking the given file path.
func (r *documentRepository) FindByPath(path string) (*document.Document, error) {
	row := r.db.QueryRow(
		`SELECT `+documentColumns+` FROM documents WHERE path = ? AND deleted_at IS NULL`,
		path,
	)
	model, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &document.NotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document by path: %w", err)
	}
	return model.toDomain(), nil
}

// List returns all documents ordered by last update, newest first.
func (r *documentRepository) List() ([]*document.Document, error) {
	rows, err := r.db.Query(
		`SELECT ` + documentColumns + ` FROM documents WHERE deleted_at IS NULL ORDER BY updated_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []*document.Document
	for rows.Next() {
		model, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// Delete soft-deletes a document. Revisions stay in place but become
// unreachable through the repository.
func (r *documentRepository) Delete(guid string) error {
	result, err := r.db.Exec(
		`UPDATE documents SET deleted_at = ? WHERE guid = ? AND deleted_at IS NULL`,
		time.Now().UTC().Unix(), guid,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &document.NotFoundError{GUID: guid}
	}
	return nil
}

// SaveRevision appends a revision snapshot, assigning the next Seq for
// its document.
func (r *documentRepository) SaveRevision(rev *document.Revision) error {
	if !rev.Source.Valid() {
		return fmt.Errorf("invalid revision source %q", rev.Source)
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}

	var nextSeq int
	err := r.db.QueryRow(
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM revisions WHERE document_guid = ?`,
		rev.DocumentGUID,
	).Scan(&nextSeq)
	if err != nil {
		return fmt.Errorf("failed to compute next revision seq: %w", err)
	}
	rev.Seq = nextSeq

	model := toRevisionModel(rev)
	result, err := r.db.Exec(
		`INSERT INTO revisions (document_guid, seq, body, summary, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		model.DocumentGUID, model.Seq, model.Body, model.Summary, model.Source, model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert revision: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rev.ID = id
	return nil
}

// Revisions returns a document's revisions ordered by Seq ascending.
func (r *documentRepository) Revisions(guid string) ([]*document.Revision, error) {
	rows, err := r.db.Query(
		`SELECT `+revisionColumns+` FROM revisions WHERE document_guid = ? ORDER BY seq ASC`,
		guid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var revs []*document.Revision
	for rows.Next() {
		model, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revs = append(revs, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revisions: %w", err)
	}
	return revs, nil
}

// LatestRevision returns the highest-Seq revision for a document.
func (r *documentRepository) LatestRevision(guid string) (*document.Revision, error) {
	row := r.db.QueryRow(
		`SELECT `+revisionColumns+` FROM revisions WHERE document_guid = ? ORDER BY seq DESC LIMIT 1`,
		guid,
	)
	model, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &document.NotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest revision: %w", err)
	}
	return model.toDomain(), nil
}
