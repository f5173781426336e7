package apperr

import "errors"

// Sentinel errors shared across services and controllers. Controllers map
// them to HTTP status codes with errors.Is; services wrap them with %w to
// attach context.
var (
	// ErrUnauthenticated: missing, expired or unknown session token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrValidation: malformed create/update input.
	ErrValidation = errors.New("invalid input")

	// ErrParentNotFound and ErrNotAFolder are create-time parent checks.
	// Both belong to the validation family.
	ErrParentNotFound = errors.New("parent not found")
	ErrNotAFolder     = errors.New("parent is not a folder")

	// ErrNotFound covers records that are absent AND private records the
	// requester may not read. The two are deliberately indistinguishable
	// so private file ids cannot be enumerated.
	ErrNotFound = errors.New("not found")

	// ErrForbidden: record is readable by the requester but not writable.
	ErrForbidden = errors.New("forbidden")

	// ErrEmailTaken: registration with an already used email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrStorage: blob or document store I/O failure.
	ErrStorage = errors.New("storage failure")

	// ErrInconsistent: the catalog references a locator the blob store
	// cannot find. A server fault, never masked as not found.
	ErrInconsistent = errors.New("catalog references missing blob")
)

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrParentNotFound) ||
		errors.Is(err, ErrNotAFolder)
}
