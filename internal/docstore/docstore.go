package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist at the given path.
var ErrNotFound = errors.New("document not found")

// Document is a raw record as stored: an opaque id plus schemaless fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store is the document-store gateway. Collections are flat named paths;
// subcollections are expressed in the path (see paths.go). Implementations
// must treat Delete of a missing document as a no-op and generate an id on
// Set when none is given.
type Store interface {
	Get(ctx context.Context, path, id string) (Document, error)
	// Set creates or replaces a document. An empty id asks the store to
	// assign one; the assigned id is returned either way.
	Set(ctx context.Context, path, id string, fields map[string]any) (string, error)
	// Update merges the given fields into an existing document.
	Update(ctx context.Context, path, id string, fields map[string]any) error
	Delete(ctx context.Context, path, id string) error
	// List returns every document in a collection. An empty orderBy keeps
	// the store's natural order.
	List(ctx context.Context, path, orderBy string, descending bool) ([]Document, error)
	// Query returns the documents whose field equals the given value.
	Query(ctx context.Context, path, field string, equals any) ([]Document, error)
}
