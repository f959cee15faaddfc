package records

import "context"

// Repo persists records. Implementations return ErrNotFound for missing ids.
type Repo interface {
	Get(ctx context.Context, id string) (Record, error)
	Put(ctx context.Context, rec Record) error
	// UpdateFields sets the four editable attributes and leaves PDF untouched.
	UpdateFields(ctx context.Context, id string, f Fields) error
	Delete(ctx context.Context, id string) error
	// Scan returns every record in store order.
	Scan(ctx context.Context) ([]Record, error)
	// ScanFirstNameContains matches first names containing substr,
	// case-sensitively. An empty substr matches everything.
	ScanFirstNameContains(ctx context.Context, substr string) ([]Record, error)
}
