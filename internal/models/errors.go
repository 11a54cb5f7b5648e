package models

import "errors"

var (
	// ErrMissingDataSource is returned when a required input table is absent or empty.
	ErrMissingDataSource = errors.New("missing data source")
	// ErrUnknownTeam is returned when a game references a team outside the team set.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrMalformedSeed is returned when a seed label does not match <region><2 digits>[a|b].
	ErrMalformedSeed = errors.New("malformed seed label")
	// ErrUnresolvedSeed is returned when a slot references a label with no team yet.
	ErrUnresolvedSeed = errors.New("unresolved seed label")
	// ErrMissingProbability is returned when the win-probability table lacks a pair.
	ErrMissingProbability = errors.New("missing win probability")
	// ErrNotFound is returned by lookups for unknown ids.
	ErrNotFound = errors.New("not found")
)
