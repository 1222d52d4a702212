package domain

import "time"

// CityID identifies a city. City names are not unique.
type CityID int64

// City groups the vehicles currently located in it.
// VehicleIDs is membership, not ownership.
type City struct {
	ID         CityID
	Name       string
	VehicleIDs []VehicleID
	CreatedAt  time.Time
}
