package model

import "time"

// Roles known to the authorization layer.  The set is open; anything other
// than RoleAdmin is treated as an ordinary principal.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal mirrors a row of the `users` table.  The refresh-token slot is
// deliberately absent: it is only ever written or matched inside the store.
//
// Fields:
//
//	ID           – users.id, assigned by storage, immutable.
//	Username     – users.username, unique, immutable after creation.
//	FullName     – users.fullname, display attribute.
//	Age          – users.age, non-negative.
//	PasswordHash – users.password, bcrypt output; never serialized.
//	Role         – users.role, defaults to "user".
//	CreatedAt    – users.created_at.
type Principal struct {
	ID           uint64
	Username     string
	FullName     string
	Age          int
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// PrincipalView is the caller-facing projection of a Principal.  It never
// carries the password hash.
type PrincipalView struct {
	ID        uint64     `json:"id"`
	Username  string     `json:"username"`
	FullName  string     `json:"fullname"`
	Age       int        `json:"age"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// View strips secret fields.
func (p Principal) View() PrincipalView {
	v := PrincipalView{ID: p.ID, Username: p.Username, FullName: p.FullName, Age: p.Age, Role: p.Role}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt
		v.CreatedAt = &t
	}
	return v
}

// ProfileChanges is a partial update of the mutable principal columns.  A nil
// field is left untouched.  PasswordHash must already be hashed.
type ProfileChanges struct {
	FullName     *string
	Age          *int
	PasswordHash *string
	Role         *string
}

// Empty reports whether no field is set.
func (c ProfileChanges) Empty() bool {
	return c.FullName == nil && c.Age == nil && c.PasswordHash == nil && c.Role == nil
}
