package mockapi

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate value")
)

// Row is one stored record. Data never carries the identifier; handlers
// add it under the collection's id field.
type Row struct {
	ID        int64
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists records per collection. unique names a Data key whose
// value must be distinct within the collection ("" for none).
type Store interface {
	List(ctx context.Context, collection string) ([]Row, error)
	Get(ctx context.Context, collection string, id int64) (Row, error)
	Create(ctx context.Context, collection string, data map[string]any, unique string) (Row, error)
	// Update merges data into the stored record; keys not in data are kept.
	Update(ctx context.Context, collection string, id int64, data map[string]any, unique string) (Row, error)
	Delete(ctx context.Context, collection string, id int64) error
}
