package service

import (
	"errors"
)

// Recoverable error kinds surfaced to the command layer. Callers branch on
// these with errors.Is; wrapped messages carry the detail.
var (
	// ErrUnknownPlayer indicates a ledger operation on an unregistered ID
	ErrUnknownPlayer = errors.New("player is not registered")

	// ErrMatchInProgress indicates a readiness check fired while the
	// guild already has an open match
	ErrMatchInProgress = errors.New("a match is already in progress")

	// ErrMatchNotFound indicates an operation on an unknown or already
	// closed match
	ErrMatchNotFound = errors.New("match not found")

	// ErrAlreadyFinalized indicates a duplicate finalize attempt
	ErrAlreadyFinalized = errors.New("match is already finalized")

	// ErrUnauthorized indicates a finalize attempt without the required role
	ErrUnauthorized = errors.New("not authorized to finalize matches")

	// ErrTeamsNotAnnounced indicates a finalize attempt before the teams
	// were confirmed as announced and moved
	ErrTeamsNotAnnounced = errors.New("teams have not been announced yet")
)
