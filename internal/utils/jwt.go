package utils // package utils provides the token codec and hashing helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind selects one of the two signing contexts.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// Verification failure reasons.  They are distinguishable for diagnostics;
// callers that must not leak them collapse them into one response.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
)

// VerificationError reports why Verify rejected a token.  errors.Is matches
// it against the Reason sentinel.
type VerificationError struct {
	Kind   TokenKind
	Reason error // one of ErrTokenExpired, ErrTokenMalformed, ErrTokenSignature
	Cause  error // raw library error, for logs
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verify %s token: %v", e.Kind, e.Reason)
}

func (e *VerificationError) Unwrap() error { return e.Reason }

// Payload is what both token kinds carry.  For access tokens it is the
// identity contract parsed on every protected request.
type Payload struct {
	SubjectID uint64
	Username  string
	Role      string
}

// Claims is the JWT body.  The subject id travels as the standard "sub"
// claim, "typ" pins the token to its signing context and "jti" makes two
// tokens minted in the same second for the same principal differ.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

type signingContext struct {
	secret []byte
	ttl    time.Duration
}

// TokenCodec signs and verifies access and refresh tokens with independent
// HS256 secrets and lifetimes.  It holds no mutable state and is safe for
// concurrent use.
type TokenCodec struct {
	access  signingContext
	refresh signingContext
	now     func() time.Time
}

// NewTokenCodec builds a codec from secrets and lifetimes resolved at startup.
func NewTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		access:  signingContext{secret: []byte(accessSecret), ttl: accessTTL},
		refresh: signingContext{secret: []byte(refreshSecret), ttl: refreshTTL},
		now:     time.Now,
	}
}

func (c *TokenCodec) ctx(kind TokenKind) signingContext {
	if kind == RefreshToken {
		return c.refresh
	}
	return c.access
}

// TTL returns the configured lifetime of kind.
func (c *TokenCodec) TTL(kind TokenKind) time.Duration { return c.ctx(kind).ttl }

// Sign mints a token of the given kind for p.
func (c *TokenCodec) Sign(kind TokenKind, p Payload) (string, error) {
	sc := c.ctx(kind)
	now := c.now().UTC()
	claims := Claims{
		Username: p.Username,
		Role:     p.Role,
		Type:     kind.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(p.SubjectID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sc.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sc.secret)
}

// Verify checks signature, expiry and kind, and returns the payload.  Any
// failure is a *VerificationError.
func (c *TokenCodec) Verify(kind TokenKind, token string) (Payload, error) {
	sc := c.ctx(kind)
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return sc.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Payload{}, &VerificationError{Kind: kind, Reason: classify(err), Cause: err}
	}
	if claims.Type != kind.String() {
		return Payload{}, &VerificationError{Kind: kind, Reason: ErrTokenMalformed,
			Cause: fmt.Errorf("unexpected token type %q", claims.Type)}
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Payload{}, &VerificationError{Kind: kind, Reason: ErrTokenMalformed,
			Cause: fmt.Errorf("bad subject %q", claims.Subject)}
	}
	return Payload{SubjectID: id, Username: claims.Username, Role: claims.Role}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}

// HashRefreshRaw returns the SHA-256 hex digest of a refresh token.  Only the
// digest is persisted, so a leaked row cannot be replayed.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
