package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/positions-api/internal/model"
	"github.com/iliyamo/positions-api/internal/utils"
)

const principalColumns = "id, username, fullname, age, password, role, created_at"

// NewPrincipal carries the columns written at registration.  PasswordHash
// must already be hashed; an empty Role becomes model.RoleUser.
type NewPrincipal struct {
	Username     string
	FullName     string
	Age          int
	PasswordHash string
	Role         string
}

// PrincipalRepo is the credential store over the `users` table.
type PrincipalRepo struct{ db Querier }

func NewPrincipalRepo(db Querier) *PrincipalRepo { return &PrincipalRepo{db: db} }

// Create inserts a principal and returns its generated id.  Constraint
// violations (duplicate username) come back as the driver error, unmodified.
func (r *PrincipalRepo) Create(ctx context.Context, in NewPrincipal) (uint64, error) {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = model.RoleUser
	}
	res, err := r.db.Exec(ctx,
		"INSERT INTO users (username, fullname, age, password, role) VALUES (?, ?, ?, ?, ?)",
		in.Username, in.FullName, in.Age, in.PasswordHash, role)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByUsername returns ErrNotFound for an empty username without issuing a
// query.
func (r *PrincipalRepo) FindByUsername(ctx context.Context, username string) (*model.Principal, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	return r.queryOne(ctx, "SELECT "+principalColumns+" FROM users WHERE username = ? LIMIT 1", username)
}

// FindByID fetches a principal by id.
func (r *PrincipalRepo) FindByID(ctx context.Context, id uint64) (*model.Principal, error) {
	return r.queryOne(ctx, "SELECT "+principalColumns+" FROM users WHERE id = ? LIMIT 1", id)
}

// FindByRefreshToken returns the principal whose single slot currently holds
// token.  Only the digest is stored, so the lookup digests its argument.
func (r *PrincipalRepo) FindByRefreshToken(ctx context.Context, token string) (*model.Principal, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.queryOne(ctx,
		"SELECT "+principalColumns+" FROM users WHERE refresh_token = ? LIMIT 1",
		utils.HashRefreshRaw(token))
}

// SetRefreshToken overwrites the single refresh-token slot.  A nil token
// clears it.
func (r *PrincipalRepo) SetRefreshToken(ctx context.Context, id uint64, token *string) error {
	var digest any // NULL
	if token != nil {
		digest = utils.HashRefreshRaw(*token)
	}
	_, err := r.db.Exec(ctx, "UPDATE users SET refresh_token = ? WHERE id = ?", digest, id)
	return err
}

// UpdateProfile applies the non-nil fields of ch and returns the updated row.
func (r *PrincipalRepo) UpdateProfile(ctx context.Context, id uint64, ch model.ProfileChanges) (*model.Principal, error) {
	if ch.Empty() {
		return nil, ErrNoOpUpdate
	}
	var (
		fields []string
		values []any
	)
	if ch.FullName != nil {
		fields = append(fields, "fullname = ?")
		values = append(values, *ch.FullName)
	}
	if ch.Age != nil {
		fields = append(fields, "age = ?")
		values = append(values, *ch.Age)
	}
	if ch.PasswordHash != nil {
		fields = append(fields, "password = ?")
		values = append(values, *ch.PasswordHash)
	}
	if ch.Role != nil {
		fields = append(fields, "role = ?")
		values = append(values, *ch.Role)
	}
	values = append(values, id)

	res, err := r.db.Exec(ctx, "UPDATE users SET "+strings.Join(fields, ", ")+" WHERE id = ?", values...)
	if err != nil {
		return nil, err
	}
	// clientFoundRows: affected counts matched rows, not changed ones.
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete hard-removes a principal and reports whether a row was removed.
func (r *PrincipalRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns every principal ordered by id.
func (r *PrincipalRepo) List(ctx context.Context) ([]model.Principal, error) {
	rows, err := r.db.Query(ctx, "SELECT "+principalColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Principal{}
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PrincipalRepo) queryOne(ctx context.Context, query string, args ...any) (*model.Principal, error) {
	rows, err := r.db.Query(ctx, query, args...)
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
	p, err := scanPrincipal(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPrincipal(rows *sql.Rows) (model.Principal, error) {
	var p model.Principal
	err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.Age, &p.PasswordHash, &p.Role, &p.CreatedAt)
	return p, err
}
