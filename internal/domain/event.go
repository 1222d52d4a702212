package domain

import "time"

// Operation names the library operation that produced an event.
type Operation string

const (
	OperationCreateCity            Operation = "CREATE_CITY"
	OperationCreateVehicle         Operation = "CREATE_VEHICLE"
	OperationCreateUser            Operation = "CREATE_USER"
	OperationAddVehicleToCity      Operation = "ADD_VEHICLE_TO_CITY"
	OperationRemoveVehicleFromCity Operation = "REMOVE_VEHICLE_FROM_CITY"
	OperationAssign                Operation = "ASSIGN"
	OperationUnassign              Operation = "UNASSIGN"
	OperationBook                  Operation = "BOOK"
	OperationReturn                Operation = "RETURN"
	OperationRemoveVehicle         Operation = "REMOVE_VEHICLE"
	OperationRemoveUser            Operation = "REMOVE_USER"
)

// Outcome is the result of an operation.
type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeRejected  Outcome = "REJECTED"
)

// ReasonCode explains a rejected outcome. Empty on success.
type ReasonCode string

const (
	ReasonNone                ReasonCode = ""
	ReasonVehicleNotAvailable ReasonCode = "VEHICLE_NOT_AVAILABLE"
	ReasonUserAlreadyBooked   ReasonCode = "USER_ALREADY_BOOKED"
	ReasonNothingToReturn     ReasonCode = "NOTHING_TO_RETURN"
	ReasonVehicleNotAssigned  ReasonCode = "VEHICLE_NOT_ASSIGNED"
	ReasonVehicleInUse        ReasonCode = "VEHICLE_IN_USE"
	ReasonCityRequired        ReasonCode = "CITY_REQUIRED"
	ReasonVehicleNotInCity    ReasonCode = "VEHICLE_NOT_IN_CITY"
	ReasonVehicleRemoved      ReasonCode = "VEHICLE_REMOVED"
	ReasonAlreadyInCity       ReasonCode = "VEHICLE_ALREADY_IN_CITY"
	ReasonInAnotherCity       ReasonCode = "VEHICLE_IN_ANOTHER_CITY"
	ReasonNotFound            ReasonCode = "NOT_FOUND"
	ReasonInvalidArgument     ReasonCode = "INVALID_ARGUMENT"
	ReasonInternal            ReasonCode = "INTERNAL"
)

// Event is the structured record emitted for every operation outcome.
type Event struct {
	ID         string
	Operation  Operation
	VehicleID  VehicleID
	UserID     UserID
	CityID     CityID
	Outcome    Outcome
	Reason     ReasonCode
	OccurredAt time.Time
}
