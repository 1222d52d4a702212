package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"moove/internal/domain"
)

// ErrProjectionCold is returned when a city's availability set has not been
// reset since startup or was invalidated after a failed write.
var ErrProjectionCold = errors.New("availability projection not populated")

// Key prefixes
const (
	availableCityPrefix = "available:city:"
	readySuffix         = ":ready"
)

// AvailabilityStore keeps a per-city set of available vehicle IDs in Redis
// so readers can query availability without walking the registries.
type AvailabilityStore struct {
	client *redis.Client
}

// NewAvailabilityStore creates a new AvailabilityStore.
func NewAvailabilityStore(client *redis.Client) *AvailabilityStore {
	return &AvailabilityStore{client: client}
}

// MarkAvailable adds the vehicle to the city's available set.
func (s *AvailabilityStore) MarkAvailable(ctx context.Context, cityID domain.CityID, vehicle *domain.Vehicle) error {
	return s.client.SAdd(ctx, cityKey(cityID), vehicleMember(vehicle.ID)).Err()
}

// MarkUnavailable removes the vehicle from the city's available set.
func (s *AvailabilityStore) MarkUnavailable(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error {
	return s.client.SRem(ctx, cityKey(cityID), vehicleMember(vehicleID)).Err()
}

// Reset empties the city's available set and marks it ready to serve reads.
// It must run before any vehicle can join the city.
func (s *AvailabilityStore) Reset(ctx context.Context, cityID domain.CityID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, cityKey(cityID))
	pipe.Set(ctx, readyKey(cityID), "1", 0)
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the city's available set and its ready marker, so
// readers fall back to the registries.
func (s *AvailabilityStore) Invalidate(ctx context.Context, cityID domain.CityID) error {
	return s.client.Del(ctx, readyKey(cityID), cityKey(cityID)).Err()
}

// AvailableVehicles returns the IDs in the city's available set, or
// ErrProjectionCold if the city is not marked ready.
func (s *AvailabilityStore) AvailableVehicles(ctx context.Context, cityID domain.CityID) ([]domain.VehicleID, error) {
	pipe := s.client.TxPipeline()
	exists := pipe.Exists(ctx, readyKey(cityID))
	smembers := pipe.SMembers(ctx, cityKey(cityID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	if exists.Val() == 0 {
		return nil, ErrProjectionCold
	}

	members := smembers.Val()
	ids := make([]domain.VehicleID, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue // Skip malformed members
		}
		ids = append(ids, domain.VehicleID(id))
	}
	return ids, nil
}

func cityKey(cityID domain.CityID) string {
	return fmt.Sprintf("%s%d", availableCityPrefix, cityID)
}

func readyKey(cityID domain.CityID) string {
	return cityKey(cityID) + readySuffix
}

func vehicleMember(vehicleID domain.VehicleID) string {
	return strconv.FormatInt(int64(vehicleID), 10)
}
