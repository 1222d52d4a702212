package domain

import "time"

// UserID identifies a user. The zero value means "no user".
type UserID int64

// User represents a rider who can book one vehicle at a time.
type User struct {
	ID              UserID
	FirstName       string
	LastName        string
	Email           string
	PaymentMethod   string    // opaque descriptor, e.g. "PayPal"
	BookedVehicleID VehicleID // set iff the vehicle is IN_USE and assigned back to this user
	CreatedAt       time.Time
}

// FullName returns the user's first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasBooking reports whether the user currently holds a vehicle.
func (u *User) HasBooking() bool {
	return u.BookedVehicleID != 0
}
