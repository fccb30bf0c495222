package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers must not be able to tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshFailed is the single external failure for refresh.  The
	// wrapped cause (a *utils.VerificationError or ErrTokenNotCurrent) is
	// for diagnostics only.
	ErrRefreshFailed = errors.New("could not refresh session")
	// ErrTokenNotCurrent means the refresh token verified but is no longer
	// the one held in the principal's slot.
	ErrTokenNotCurrent = errors.New("refresh token is not current")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
)
