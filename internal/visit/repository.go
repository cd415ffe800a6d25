package visit

import (
	"context"
	"database/sql"
	"fmt"
)

const selectColumns = `id, visit_date, status, form_count, product_count,
	postal_code, state, city, street, neighborhood, number, complement`

// Repository persists the visit collection in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a visit repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Load returns every stored visit in collection order.
// A row that fails validation is reported as an error.
func (r *Repository) Load(ctx context.Context) (visits []Visit, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM visits ORDER BY position, id",
	)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var v Visit
		if err := rows.Scan(
			&v.ID, &v.Date, &v.Status, &v.FormCount, &v.ProductCount,
			&v.Address.PostalCode, &v.Address.State, &v.Address.City,
			&v.Address.Street, &v.Address.Neighborhood, &v.Address.Number, &v.Address.Complement,
		); err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("corrupt visit row: %w", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}

	return visits, nil
}

// Save replaces the stored collection with visits in a single transaction.
func (r *Repository) Save(ctx context.Context, visits []Visit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	if err := saveTx(ctx, tx, visits); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (also failed to roll back: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing visits: %w", err)
	}
	return nil
}

func saveTx(ctx context.Context, tx *sql.Tx, visits []Visit) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM visits"); err != nil {
		return fmt.Errorf("clearing visits: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO visits
		(id, position, visit_date, status, form_count, product_count,
		 postal_code, state, city, street, neighborhood, number, complement)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i, v := range visits {
		if _, err := stmt.ExecContext(ctx,
			v.ID, i, v.Day(), v.Status, v.FormCount, v.ProductCount,
			v.Address.PostalCode, v.Address.State, v.Address.City,
			v.Address.Street, v.Address.Neighborhood, v.Address.Number, v.Address.Complement,
		); err != nil {
			return fmt.Errorf("inserting visit %s: %w", v.ID, err)
		}
	}
	return nil
}

// Count returns the number of stored visits.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM visits").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting visits: %w", err)
	}
	return n, nil
}
