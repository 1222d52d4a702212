package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrNotMember is returned when a vehicle is not in the given city.
	ErrNotMember = errors.New("vehicle not a member of city")

	// ErrAlreadyMember is returned when a vehicle is already in the given city.
	ErrAlreadyMember = errors.New("vehicle already a member of city")

	// ErrMemberOfAnotherCity is returned when a vehicle already belongs to a different city.
	ErrMemberOfAnotherCity = errors.New("vehicle is a member of another city")
)
