package memory

import (
	"context"
	"errors"
	"testing"

	"moove/internal/domain"
	"moove/internal/identity"
	"moove/internal/repository"
)

func TestVehicleRegistry_CreateForcesInitialState(t *testing.T) {
	ctx := context.Background()
	registry := NewVehicleRegistry(identity.NewAllocator())

	vehicle := &domain.Vehicle{
		Type:           domain.VehicleTypeBike,
		Status:         domain.VehicleStatusInUse,
		AssignedUserID: 42,
	}
	if err := registry.Create(ctx, vehicle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if vehicle.ID != 1 {
		t.Errorf("expected id 1, got %d", vehicle.ID)
	}
	if vehicle.Status != domain.VehicleStatusAvailable {
		t.Errorf("expected status %s, got %s", domain.VehicleStatusAvailable, vehicle.Status)
	}
	if vehicle.AssignedUserID != 0 {
		t.Errorf("expected no assigned user, got %d", vehicle.AssignedUserID)
	}
	if vehicle.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestVehicleRegistry_GetByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	registry := NewVehicleRegistry(identity.NewAllocator())

	vehicle := &domain.Vehicle{Type: domain.VehicleTypeScooter}
	_ = registry.Create(ctx, vehicle)

	got, err := registry.GetByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got.Status = domain.VehicleStatusRemoved

	stored, _ := registry.GetByID(ctx, vehicle.ID)
	if stored.Status != domain.VehicleStatusAvailable {
		t.Errorf("mutating a returned copy leaked into the registry: %s", stored.Status)
	}
}

func TestVehicleRegistry_GetAllKeepsOrderAndRemoved(t *testing.T) {
	ctx := context.Background()
	registry := NewVehicleRegistry(identity.NewAllocator())

	types := []domain.VehicleType{domain.VehicleTypeBike, domain.VehicleTypeScooter, domain.VehicleTypeEScooter}
	for _, vt := range types {
		_ = registry.Create(ctx, &domain.Vehicle{Type: vt})
	}

	removed, _ := registry.GetByID(ctx, 2)
	removed.Status = domain.VehicleStatusRemoved
	if err := registry.Update(ctx, removed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, _ := registry.GetAll(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 vehicles, got %d", len(all))
	}
	for i, v := range all {
		if v.Type != types[i] {
			t.Errorf("position %d: expected %s, got %s", i, types[i], v.Type)
		}
	}
	if all[1].Status != domain.VehicleStatusRemoved {
		t.Errorf("expected removed vehicle to be listed, got %s", all[1].Status)
	}
}

func TestVehicleRegistry_UpdateUnknown(t *testing.T) {
	registry := NewVehicleRegistry(identity.NewAllocator())

	err := registry.Update(context.Background(), &domain.Vehicle{ID: 99})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRegistry_CreateAndRemove(t *testing.T) {
	ctx := context.Background()
	registry := NewUserRegistry(identity.NewAllocator())

	simone := &domain.User{FirstName: "Simone", LastName: "Camerano", Email: "camerano@example.com", PaymentMethod: "Bancomat", BookedVehicleID: 7}
	luca := &domain.User{FirstName: "Luca", LastName: "Rossi", Email: "rossi@example.com", PaymentMethod: "PayPal"}
	_ = registry.Create(ctx, simone)
	_ = registry.Create(ctx, luca)

	if simone.ID != 1 || luca.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", simone.ID, luca.ID)
	}
	if simone.BookedVehicleID != 0 {
		t.Errorf("expected no booking on create, got %d", simone.BookedVehicleID)
	}

	if err := registry.Remove(ctx, simone.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := registry.GetByID(ctx, simone.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}

	all, _ := registry.GetAll(ctx)
	if len(all) != 1 || all[0].ID != luca.ID {
		t.Errorf("expected only luca to remain, got %+v", all)
	}

	if err := registry.Remove(ctx, simone.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestUserRegistry_IDsNotReusedAfterRemove(t *testing.T) {
	ctx := context.Background()
	registry := NewUserRegistry(identity.NewAllocator())

	first := &domain.User{FirstName: "A"}
	_ = registry.Create(ctx, first)
	_ = registry.Remove(ctx, first.ID)

	second := &domain.User{FirstName: "B"}
	_ = registry.Create(ctx, second)
	if second.ID != 2 {
		t.Errorf("expected id 2, got %d", second.ID)
	}
}

func TestCityRegistry_Membership(t *testing.T) {
	ctx := context.Background()
	registry := NewCityRegistry(identity.NewAllocator())

	gradara := &domain.City{Name: "Gradara"}
	pesaro := &domain.City{Name: "Pesaro"}
	_ = registry.Create(ctx, gradara)
	_ = registry.Create(ctx, pesaro)

	if err := registry.AddVehicle(ctx, gradara.ID, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := registry.AddVehicle(ctx, gradara.ID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := registry.AddVehicle(ctx, gradara.ID, 1); !errors.Is(err, repository.ErrAlreadyMember) {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}
	if err := registry.AddVehicle(ctx, pesaro.ID, 1); !errors.Is(err, repository.ErrMemberOfAnotherCity) {
		t.Errorf("expected ErrMemberOfAnotherCity, got %v", err)
	}

	members, _ := registry.Members(ctx, gradara.ID)
	if len(members) != 2 || members[0] != 1 || members[1] != 2 {
		t.Errorf("expected members [1 2], got %v", members)
	}

	cityID, err := registry.CityOf(ctx, 2)
	if err != nil || cityID != gradara.ID {
		t.Errorf("expected vehicle 2 in gradara, got %d (%v)", cityID, err)
	}
}

func TestCityRegistry_MoveBetweenCities(t *testing.T) {
	ctx := context.Background()
	registry := NewCityRegistry(identity.NewAllocator())

	gradara := &domain.City{Name: "Gradara"}
	pesaro := &domain.City{Name: "Pesaro"}
	_ = registry.Create(ctx, gradara)
	_ = registry.Create(ctx, pesaro)
	_ = registry.AddVehicle(ctx, gradara.ID, 5)

	if err := registry.RemoveVehicle(ctx, gradara.ID, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := registry.RemoveVehicle(ctx, gradara.ID, 5); !errors.Is(err, repository.ErrNotMember) {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
	if _, err := registry.CityOf(ctx, 5); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected vehicle to belong to no city, got %v", err)
	}

	if err := registry.AddVehicle(ctx, pesaro.ID, 5); err != nil {
		t.Fatalf("expected re-add to another city to succeed, got %v", err)
	}
}

func TestCityRegistry_DuplicateNamesAreDistinctCities(t *testing.T) {
	ctx := context.Background()
	registry := NewCityRegistry(identity.NewAllocator())

	a := &domain.City{Name: "Pesaro"}
	b := &domain.City{Name: "Pesaro"}
	_ = registry.Create(ctx, a)
	_ = registry.Create(ctx, b)

	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, both got %d", a.ID)
	}
	all, _ := registry.GetAll(ctx)
	if len(all) != 2 {
		t.Errorf("expected 2 cities, got %d", len(all))
	}
}

func TestCityRegistry_GetByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	registry := NewCityRegistry(identity.NewAllocator())

	city := &domain.City{Name: "Gradara"}
	_ = registry.Create(ctx, city)
	_ = registry.AddVehicle(ctx, city.ID, 1)

	got, err := registry.GetByID(ctx, city.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got.Name = "Pesaro"
	got.VehicleIDs[0] = 99

	stored, _ := registry.GetByID(ctx, city.ID)
	if stored.Name != "Gradara" {
		t.Errorf("mutating a returned copy leaked into the registry: %s", stored.Name)
	}
	if len(stored.VehicleIDs) != 1 || stored.VehicleIDs[0] != 1 {
		t.Errorf("expected stored members [1], got %v", stored.VehicleIDs)
	}
}

func TestCityRegistry_UnknownCity(t *testing.T) {
	ctx := context.Background()
	registry := NewCityRegistry(identity.NewAllocator())

	if err := registry.AddVehicle(ctx, 9, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := registry.Members(ctx, 9); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEventLog_ListFiltersAndLimits(t *testing.T) {
	ctx := context.Background()
	log := NewEventLog()

	for i := 1; i <= 5; i++ {
		_ = log.Append(ctx, domain.Event{
			ID:        string(rune('a' + i)),
			Operation: domain.OperationBook,
			VehicleID: domain.VehicleID(i % 2),
			UserID:    domain.UserID(i),
		})
	}

	odd, _ := log.List(ctx, repository.EventFilter{VehicleID: 1})
	if len(odd) != 3 {
		t.Fatalf("expected 3 events for vehicle 1, got %d", len(odd))
	}

	latest, _ := log.List(ctx, repository.EventFilter{Limit: 2})
	if len(latest) != 2 || latest[0].UserID != 4 || latest[1].UserID != 5 {
		t.Errorf("expected the two most recent events, got %+v", latest)
	}
}
