package tests

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"moove/internal/domain"
	"moove/internal/identity"
	"moove/internal/redis"
	"moove/internal/repository"
	"moove/internal/repository/memory"
	"moove/internal/service"
)

// ──────────────────────────────────────────────
// FLEET FIXTURE
// ──────────────────────────────────────────────

// Fleet wires the registries and services the way cmd/server does,
// with an EventCollector as the observer.
type Fleet struct {
	IDs      *identity.Allocator
	Vehicles *memory.VehicleRegistry
	Users    *memory.UserRegistry
	Cities   *memory.CityRegistry
	Events   *service.EventCollector
	Logs     *observer.ObservedLogs

	VehicleService    *service.VehicleService
	UserService       *service.UserService
	CityService       *service.CityService
	AssignmentService *service.AssignmentService
	RemovalService    *service.RemovalService
}

// NewFleet builds a fleet. store may be nil.
func NewFleet(store redis.AvailabilityStoreInterface) *Fleet {
	ids := identity.NewAllocator()
	vehicles := memory.NewVehicleRegistry(ids)
	users := memory.NewUserRegistry(ids)
	cities := memory.NewCityRegistry(ids)
	return newFleet(ids, vehicles, users, users, cities, store, nil)
}

// NewFleetWithObserver builds a fleet that delivers every event to first
// and only then to the fleet's EventCollector.
func NewFleetWithObserver(first service.Observer) *Fleet {
	ids := identity.NewAllocator()
	vehicles := memory.NewVehicleRegistry(ids)
	users := memory.NewUserRegistry(ids)
	cities := memory.NewCityRegistry(ids)
	return newFleet(ids, vehicles, users, users, cities, nil, first)
}

// NewFleetWithUserRepo builds a fleet whose assignment and removal services
// write users through userRepo instead of the plain registry.
func NewFleetWithUserRepo(userRepo *MockUserRepository) *Fleet {
	ids := identity.NewAllocator()
	vehicles := memory.NewVehicleRegistry(ids)
	cities := memory.NewCityRegistry(ids)
	return newFleet(ids, vehicles, userRepo.UserRegistry, userRepo, cities, nil, nil)
}

func newFleet(
	ids *identity.Allocator,
	vehicles *memory.VehicleRegistry,
	users *memory.UserRegistry,
	assignUsers repository.UserRepository,
	cities *memory.CityRegistry,
	store redis.AvailabilityStoreInterface,
	first service.Observer,
) *Fleet {
	events := service.NewEventCollector()
	var sink service.Observer = events
	if first != nil {
		sink = service.Observers{first, events}
	}
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	locks := service.NewLockManager()
	assignments := service.NewAssignmentService(vehicles, assignUsers, cities, locks, store, sink, logger)

	return &Fleet{
		IDs:               ids,
		Vehicles:          vehicles,
		Users:             users,
		Cities:            cities,
		Events:            events,
		Logs:              logs,
		VehicleService:    service.NewVehicleService(vehicles, sink),
		UserService:       service.NewUserService(users, sink),
		CityService:       service.NewCityService(cities, vehicles, locks, store, sink, logger),
		AssignmentService: assignments,
		RemovalService:    service.NewRemovalService(vehicles, assignUsers, cities, assignments, sink),
	}
}

// MustCity creates a city or panics.
func (f *Fleet) MustCity(name string) *domain.City {
	city, err := f.CityService.CreateCity(context.Background(), name)
	if err != nil {
		panic(err)
	}
	return city
}

// MustVehicle creates a vehicle or panics.
func (f *Fleet) MustVehicle(vehicleType domain.VehicleType) *domain.Vehicle {
	vehicle, err := f.VehicleService.CreateVehicle(context.Background(), vehicleType)
	if err != nil {
		panic(err)
	}
	return vehicle
}

// MustVehicleIn creates a vehicle and adds it to the city, or panics.
func (f *Fleet) MustVehicleIn(cityID domain.CityID, vehicleType domain.VehicleType) *domain.Vehicle {
	vehicle := f.MustVehicle(vehicleType)
	if err := f.CityService.AddVehicle(context.Background(), cityID, vehicle.ID); err != nil {
		panic(err)
	}
	return vehicle
}

// MustUser creates a user or panics.
func (f *Fleet) MustUser(firstName, lastName string) *domain.User {
	user, err := f.UserService.CreateUser(context.Background(), service.CreateUserRequest{
		FirstName:     firstName,
		LastName:      lastName,
		Email:         firstName + "@example.com",
		PaymentMethod: "CARD",
	})
	if err != nil {
		panic(err)
	}
	return user
}

// Vehicle reads a vehicle straight from the registry, or panics.
func (f *Fleet) Vehicle(id domain.VehicleID) *domain.Vehicle {
	vehicle, err := f.Vehicles.GetByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return vehicle
}

// User reads a user straight from the registry, or panics.
func (f *Fleet) User(id domain.UserID) *domain.User {
	user, err := f.Users.GetByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return user
}

// ──────────────────────────────────────────────
// MOCK AVAILABILITY STORE
// ──────────────────────────────────────────────

// MockAvailabilityStore is an in-memory stand-in for the Redis projection.
type MockAvailabilityStore struct {
	mu        sync.RWMutex
	available map[domain.CityID]map[domain.VehicleID]bool
	ready     map[domain.CityID]bool

	// Counters for verification
	MarkAvailableCallCount   int32
	MarkUnavailableCallCount int32
	InvalidateCallCount      int32
	AvailableCallCount       int32

	// Error injection
	MarkAvailableError error
	InvalidateError    error
	AvailableError     error
}

// NewMockAvailabilityStore creates a new mock availability store.
func NewMockAvailabilityStore() *MockAvailabilityStore {
	return &MockAvailabilityStore{
		available: make(map[domain.CityID]map[domain.VehicleID]bool),
		ready:     make(map[domain.CityID]bool),
	}
}

func (m *MockAvailabilityStore) MarkAvailable(ctx context.Context, cityID domain.CityID, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.MarkAvailableCallCount, 1)
	if m.MarkAvailableError != nil {
		return m.MarkAvailableError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.available[cityID] == nil {
		m.available[cityID] = make(map[domain.VehicleID]bool)
	}
	m.available[cityID][vehicle.ID] = true
	return nil
}

func (m *MockAvailabilityStore) MarkUnavailable(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error {
	atomic.AddInt32(&m.MarkUnavailableCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.available[cityID], vehicleID)
	return nil
}

func (m *MockAvailabilityStore) Reset(ctx context.Context, cityID domain.CityID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.available, cityID)
	m.ready[cityID] = true
	return nil
}

func (m *MockAvailabilityStore) Invalidate(ctx context.Context, cityID domain.CityID) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	if m.InvalidateError != nil {
		return m.InvalidateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.available, cityID)
	delete(m.ready, cityID)
	return nil
}

func (m *MockAvailabilityStore) AvailableVehicles(ctx context.Context, cityID domain.CityID) ([]domain.VehicleID, error) {
	atomic.AddInt32(&m.AvailableCallCount, 1)
	if m.AvailableError != nil {
		return nil, m.AvailableError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready[cityID] {
		return nil, redis.ErrProjectionCold
	}
	ids := make([]domain.VehicleID, 0, len(m.available[cityID]))
	for id := range m.available[cityID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Inject puts a vehicle into the projection without touching the registries.
func (m *MockAvailabilityStore) Inject(cityID domain.CityID, vehicleID domain.VehicleID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.available[cityID] == nil {
		m.available[cityID] = make(map[domain.VehicleID]bool)
	}
	m.available[cityID][vehicleID] = true
}

// IsReady reports whether the city's projection is serving reads.
func (m *MockAvailabilityStore) IsReady(cityID domain.CityID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready[cityID]
}

// IsAvailable reports whether the projection lists the vehicle in the city.
func (m *MockAvailabilityStore) IsAvailable(cityID domain.CityID, vehicleID domain.VehicleID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available[cityID][vehicleID]
}

// Ensure MockAvailabilityStore implements the interface.
var _ redis.AvailabilityStoreInterface = (*MockAvailabilityStore)(nil)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository wraps a UserRegistry with update error injection.
type MockUserRepository struct {
	*memory.UserRegistry

	UpdateCallCount int32
	UpdateError     error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{UserRegistry: memory.NewUserRegistry(identity.NewAllocator())}
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	return m.UserRegistry.Update(ctx, user)
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

// ──────────────────────────────────────────────
// MOCK EVENT REPOSITORY
// ──────────────────────────────────────────────

// MockEventRepository records appended events and can fail on demand.
type MockEventRepository struct {
	mu     sync.Mutex
	events []domain.Event

	AppendCallCount int32
	AppendError     error
}

// NewMockEventRepository creates a new mock event repository.
func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) Append(ctx context.Context, event domain.Event) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventRepository) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Event
	for _, event := range m.events {
		if filter.Matches(event) {
			out = append(out, event)
		}
	}
	return out, nil
}

var _ repository.EventRepository = (*MockEventRepository)(nil)

// ──────────────────────────────────────────────
// SLOW OBSERVER
// ──────────────────────────────────────────────

// SlowObserver holds up delivery of one operation's events until Release is
// called. Parked is closed when the first such event arrives.
type SlowObserver struct {
	operation domain.Operation
	parked    chan struct{}
	release   chan struct{}
	once      sync.Once
}

// NewSlowObserver creates a SlowObserver that holds events of op.
func NewSlowObserver(op domain.Operation) *SlowObserver {
	return &SlowObserver{
		operation: op,
		parked:    make(chan struct{}),
		release:   make(chan struct{}),
	}
}

// Observe blocks events of the held operation until Release.
func (o *SlowObserver) Observe(ctx context.Context, event domain.Event) {
	if event.Operation != o.operation {
		return
	}
	o.once.Do(func() { close(o.parked) })
	<-o.release
}

// Parked is closed once an event of the held operation is being delivered.
func (o *SlowObserver) Parked() <-chan struct{} {
	return o.parked
}

// Release lets held events through.
func (o *SlowObserver) Release() {
	close(o.release)
}
