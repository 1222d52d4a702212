package identity

import (
	"sync"
	"testing"

	"moove/internal/domain"
)

func TestAllocator_StartsAtOneAndIncrements(t *testing.T) {
	a := NewAllocator()

	for want := domain.VehicleID(1); want <= 3; want++ {
		if got := a.NextVehicleID(); got != want {
			t.Fatalf("expected vehicle id %d, got %d", want, got)
		}
	}
}

func TestAllocator_CountersAreIndependent(t *testing.T) {
	a := NewAllocator()

	a.NextVehicleID()
	a.NextVehicleID()

	if got := a.NextUserID(); got != 1 {
		t.Errorf("expected first user id 1, got %d", got)
	}
	if got := a.NextCityID(); got != 1 {
		t.Errorf("expected first city id 1, got %d", got)
	}
	if got := a.NextVehicleID(); got != 3 {
		t.Errorf("expected third vehicle id 3, got %d", got)
	}
}

func TestAllocator_ConcurrentCallsNeverCollide(t *testing.T) {
	a := NewAllocator()

	const workers, perWorker = 8, 250
	ids := make(chan domain.UserID, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- a.NextUserID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[domain.UserID]bool, workers*perWorker)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate user id %d", id)
		}
		seen[id] = true
	}

	for id := domain.UserID(1); id <= workers*perWorker; id++ {
		if !seen[id] {
			t.Errorf("missing user id %d", id)
		}
	}
}
