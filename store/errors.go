package store

import "errors"

// Validation errors are checked before any backend call and rejected
// locally, without a network round-trip.
var (
	ErrNoSession             = errors.New("no open session")
	ErrIndexOutOfRange       = errors.New("index out of range")
	ErrDuplicateScreen       = errors.New("screen already in sequence")
	ErrUnknownScreen         = errors.New("screen not in sequence")
	ErrEmptySelection        = errors.New("selection is empty")
	ErrForkPointNotFound     = errors.New("fork point not found")
	ErrBranchNotFound        = errors.New("branch not found")
	ErrEmptyBranch           = errors.New("no screens staged for branch")
	ErrInvalidBranchRange    = errors.New("branch screens must come after the fork point")
	ErrScreenAlreadyBranched = errors.New("screen already belongs to a branch")
	ErrWrongMode             = errors.New("operation requires branch-select mode")
	ErrInvalidRange          = errors.New("range start must not exceed end")
)
