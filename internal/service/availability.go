package service

import (
	"context"

	"go.uber.org/zap"

	"moove/internal/domain"
	"moove/internal/redis"
	"moove/internal/repository"
)

// availabilityProjector mirrors vehicle availability into the optional
// Redis projection. Projection failures never fail the operation; a city
// whose projection missed a write is invalidated and served from the
// registries from then on.
type availabilityProjector struct {
	store    redis.AvailabilityStoreInterface
	cityRepo repository.CityRepository
	logger   *zap.Logger
}

func newAvailabilityProjector(store redis.AvailabilityStoreInterface, cityRepo repository.CityRepository, logger *zap.Logger) availabilityProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return availabilityProjector{store: store, cityRepo: cityRepo, logger: logger.Named("availability")}
}

// refresh projects the vehicle's current status into its current city.
func (p availabilityProjector) refresh(ctx context.Context, vehicle *domain.Vehicle) {
	if p.store == nil {
		return
	}
	cityID, err := p.cityRepo.CityOf(ctx, vehicle.ID)
	if err != nil {
		return // Not in any city
	}
	p.refreshIn(ctx, cityID, vehicle)
}

// refreshIn projects the vehicle's current status into the given city.
func (p availabilityProjector) refreshIn(ctx context.Context, cityID domain.CityID, vehicle *domain.Vehicle) {
	if p.store == nil {
		return
	}
	var err error
	if vehicle.Status == domain.VehicleStatusAvailable {
		err = p.store.MarkAvailable(ctx, cityID, vehicle)
	} else {
		err = p.store.MarkUnavailable(ctx, cityID, vehicle.ID)
	}
	if err != nil {
		p.invalidate(ctx, cityID, err)
	}
}

// forget drops the vehicle from the given city's projection.
func (p availabilityProjector) forget(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) {
	if p.store == nil {
		return
	}
	if err := p.store.MarkUnavailable(ctx, cityID, vehicleID); err != nil {
		p.invalidate(ctx, cityID, err)
	}
}

// reset prepares an empty projection for a new city.
func (p availabilityProjector) reset(ctx context.Context, cityID domain.CityID) {
	if p.store == nil {
		return
	}
	if err := p.store.Reset(ctx, cityID); err != nil {
		p.invalidate(ctx, cityID, err)
	}
}

// invalidate drops a city's projection after a failed write, so readers go
// back to the registries instead of trusting a set that missed an update.
// If the drop fails too, the city's set may omit AVAILABLE vehicles until
// it is invalidated or reset.
func (p availabilityProjector) invalidate(ctx context.Context, cityID domain.CityID, cause error) {
	if err := p.store.Invalidate(ctx, cityID); err != nil {
		p.logger.Error("failed to invalidate availability projection",
			zap.Int64("city_id", int64(cityID)),
			zap.NamedError("write_error", cause),
			zap.Error(err),
		)
		return
	}
	p.logger.Warn("availability projection invalidated",
		zap.Int64("city_id", int64(cityID)),
		zap.Error(cause),
	)
}
