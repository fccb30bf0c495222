package model

import "time"

// Position mirrors a row of the `positions` table.  OwnerID references
// users.id; the column is named `id` in the legacy schema.
type Position struct {
	ID        uint64    `json:"position_id"`
	Code      string    `json:"position_code"`
	Name      string    `json:"position_name"`
	OwnerID   *uint64   `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PositionChanges is a partial update; nil fields are left untouched.
// Ownership cannot be changed through it.
type PositionChanges struct {
	Code *string
	Name *string
}

// Empty reports whether no field is set.
func (c PositionChanges) Empty() bool { return c.Code == nil && c.Name == nil }
