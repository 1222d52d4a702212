package service

import (
	"context"

	"moove/internal/domain"
	"moove/internal/repository"
)

// UserService handles user registration and lookup.
type UserService struct {
	userRepo repository.UserRepository
	events   emitter
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, observer Observer) *UserService {
	return &UserService{
		userRepo: userRepo,
		events:   newEmitter(observer),
	}
}

// CreateUserRequest contains the parameters for registering a user.
type CreateUserRequest struct {
	FirstName     string
	LastName      string
	Email         string
	PaymentMethod string
}

// CreateUser registers a new user with no booking. Emails are not checked
// for uniqueness.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	user := &domain.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PaymentMethod: req.PaymentMethod,
	}
	err := s.userRepo.Create(ctx, user)

	s.events.emit(ctx, domain.OperationCreateUser, subject{userID: user.ID}, err)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// GetAllUsers retrieves all registered users.
func (s *UserService) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.GetAll(ctx)
}
