// Package queue carries authentication events over RabbitMQ: the publisher
// used by the auth service and the consumer that appends them to an audit log.
package queue

// Auth event types.
const (
	EventRegistered    = "registered"
	EventLogin         = "login"
	EventLoginFailed   = "login_failed"
	EventRefresh       = "refresh"
	EventRefreshFailed = "refresh_failed"
	EventLogout        = "logout"
)

// AuthEvent is published after every credential or session operation.  It
// never carries a password, hash or token.  UserID is zero when the
// principal could not be resolved (e.g. unknown username).
type AuthEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id,omitempty"`
	Username   string `json:"username,omitempty"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
