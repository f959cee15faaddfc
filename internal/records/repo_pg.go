package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, first_name, last_name, role, salary, pdf`

// Get returns a record by id.
func (r *PGRepo) Get(ctx context.Context, id string) (Record, error) {
	const query = `SELECT ` + selectColumns + ` FROM records WHERE id = $1`
	var rec Record
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.FirstName,
		&rec.LastName,
		&rec.Role,
		&rec.Salary,
		&rec.PDF,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("select record %s: %w", id, err)
	}
	return rec, nil
}

// Put inserts the record or replaces the row with the same id.
func (r *PGRepo) Put(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO records (id, first_name, last_name, role, salary, pdf)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    role = EXCLUDED.role,
    salary = EXCLUDED.salary,
    pdf = EXCLUDED.pdf,
    updated_at = now()`
	if _, err := r.DB.ExecContext(ctx, query, rec.ID, rec.FirstName, rec.LastName, rec.Role, rec.Salary, rec.PDF); err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

// UpdateFields updates the editable columns of an existing row.
func (r *PGRepo) UpdateFields(ctx context.Context, id string, f Fields) error {
	const query = `
UPDATE records
SET first_name = $2, last_name = $3, role = $4, salary = $5, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, f.FirstName, f.LastName, f.Role, f.Salary)
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	return requireRow(res)
}

// Delete removes the row.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return requireRow(res)
}

// Scan returns every row in insertion order.
func (r *PGRepo) Scan(ctx context.Context) ([]Record, error) {
	const query = `SELECT ` + selectColumns + ` FROM records ORDER BY created_at, id`
	return r.query(ctx, query)
}

// ScanFirstNameContains matches with strpos so LIKE wildcards in substr are
// taken literally.
func (r *PGRepo) ScanFirstNameContains(ctx context.Context, substr string) ([]Record, error) {
	const query = `SELECT ` + selectColumns + ` FROM records WHERE strpos(first_name, $1) > 0 ORDER BY created_at, id`
	if substr == "" {
		return r.Scan(ctx)
	}
	return r.query(ctx, query, substr)
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Role, &rec.Salary, &rec.PDF); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
