package services

import "errors"

// Typed errors surfaced by the core operations. Controllers map these onto
// HTTP status codes; anything else is treated as an internal error.
var (
	ErrInvalidLocation = errors.New("latitude and longitude must be finite and in range")
	ErrWardNotFound    = errors.New("no ward contains this location")
	ErrDuplicateVote   = errors.New("complaint already upvoted by this user")
	ErrVoteNotFound    = errors.New("no upvote by this user to remove")
	ErrUnauthorized    = errors.New("operation not permitted for this user")
	ErrNotFound        = errors.New("record not found")
)
