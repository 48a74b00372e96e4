package domain

import "errors"

// Expected, caller-facing validation outcomes. The HTTP adapter maps
// these to 4xx responses; the service never retries on them.
var (
	// ErrNotFound: the referenced record does not exist or is
	// soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrCrossWorld: a referenced parent/field/target belongs to a
	// different world than the operation's world context.
	ErrCrossWorld = errors.New("belongs to a different world")

	// ErrCircularReference: a move would place an entry under itself
	// or one of its own descendants.
	ErrCircularReference = errors.New("circular reference")

	// ErrDuplicateSlug: a write would violate a unique-slug constraint.
	ErrDuplicateSlug = errors.New("slug already in use")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ErrInvariant signals internal corruption (a path not matching its
// computed value). It indicates a bug, is fatal to the request, and is
// never mapped to a client-recoverable status.
var ErrInvariant = errors.New("invariant violation")
