package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/positions-api/internal/model"
)

const positionColumns = "position_id, position_code, position_name, id, created_at, updated_at"

// PositionRepo handles CRUD on the `positions` table.  Methods taking an
// owner pointer restrict the statement to that owner's rows; nil means
// unrestricted (admin).
type PositionRepo struct{ db Querier }

func NewPositionRepo(db Querier) *PositionRepo { return &PositionRepo{db: db} }

// Create inserts a position owned by ownerID and returns the stored row.
func (r *PositionRepo) Create(ctx context.Context, code, name string, ownerID uint64) (*model.Position, error) {
	res, err := r.db.Exec(ctx,
		"INSERT INTO positions (position_code, position_name, id) VALUES (?, ?, ?)",
		code, name, ownerID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, uint64(id), nil)
}

// Get fetches one position, optionally scoped to an owner.  A row owned by
// somebody else is reported as ErrNotFound.
func (r *PositionRepo) Get(ctx context.Context, id uint64, owner *uint64) (*model.Position, error) {
	where, args := scoped("position_id = ?", id, owner)
	rows, err := r.db.Query(ctx, "SELECT "+positionColumns+" FROM positions WHERE "+where+" LIMIT 1", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	p, err := scanPosition(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByCode returns the first position with the given code.
func (r *PositionRepo) FindByCode(ctx context.Context, code string) (*model.Position, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	rows, err := r.db.Query(ctx, "SELECT "+positionColumns+" FROM positions WHERE position_code = ? LIMIT 1", code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	p, err := scanPosition(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns positions ordered by id, optionally scoped to an owner.
func (r *PositionRepo) List(ctx context.Context, owner *uint64) ([]model.Position, error) {
	q := "SELECT " + positionColumns + " FROM positions"
	var args []any
	if owner != nil {
		q += " WHERE id = ?"
		args = append(args, *owner)
	}
	rows, err := r.db.Query(ctx, q+" ORDER BY position_id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update applies ch and returns the updated row.  ErrNoOpUpdate when ch is
// empty, ErrNotFound when no (owned) row matched.
func (r *PositionRepo) Update(ctx context.Context, id uint64, owner *uint64, ch model.PositionChanges) (*model.Position, error) {
	if ch.Empty() {
		return nil, ErrNoOpUpdate
	}
	var (
		fields []string
		values []any
	)
	if ch.Code != nil {
		fields = append(fields, "position_code = ?")
		values = append(values, *ch.Code)
	}
	if ch.Name != nil {
		fields = append(fields, "position_name = ?")
		values = append(values, *ch.Name)
	}
	where, args := scoped("position_id = ?", id, owner)
	values = append(values, args...)

	res, err := r.db.Exec(ctx, "UPDATE positions SET "+strings.Join(fields, ", ")+" WHERE "+where, values...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id, nil)
}

// Delete removes a position and reports whether a row was removed.
func (r *PositionRepo) Delete(ctx context.Context, id uint64, owner *uint64) (bool, error) {
	where, args := scoped("position_id = ?", id, owner)
	res, err := r.db.Exec(ctx, "DELETE FROM positions WHERE "+where, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scoped(cond string, id uint64, owner *uint64) (string, []any) {
	if owner == nil {
		return cond, []any{id}
	}
	return cond + " AND id = ?", []any{id, *owner}
}

func scanPosition(rows *sql.Rows) (model.Position, error) {
	var (
		p     model.Position
		owner sql.NullInt64
	)
	if err := rows.Scan(&p.ID, &p.Code, &p.Name, &owner, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	if owner.Valid {
		v := uint64(owner.Int64)
		p.OwnerID = &v
	}
	return p, nil
}
