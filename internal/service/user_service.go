package service

import (
	"context"

	"fritter/internal/models"
	"fritter/internal/repository"
	"fritter/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	hashCost int
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, hashCost: bcrypt.DefaultCost}
}

// WithHashCost sets the bcrypt cost used for new passwords.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

// Signup creates an account. Duplicate usernames are a CONFLICT.
func (s *UserService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	if err := validation.Username(username); err != nil {
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Username: username, Password: string(hashedPassword)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	invalid := models.NewUnauthorizedError("Invalid credentials")
	if username == "" || password == "" {
		return nil, invalid
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if models.HasCode(err, models.CodeNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, invalid
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// Delete removes the account and everything it owns.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.userRepo.Delete(ctx, id)
}
