package service

import (
	"context"
	"strings"

	"fritter/internal/models"
	"fritter/internal/repository"
	"fritter/internal/validation"
)

type PaymentService struct {
	paymentRepo repository.PaymentProfileRepository
	userRepo    repository.UserRepository
}

type PaymentProfileInput struct {
	ActorID         uint
	ProfileID       uint
	PaymentType     string
	PaymentUsername string
	PaymentLink     string
}

func NewPaymentService(paymentRepo repository.PaymentProfileRepository, userRepo repository.UserRepository) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, userRepo: userRepo}
}

func validatePaymentFields(in PaymentProfileInput) error {
	if strings.TrimSpace(in.PaymentType) == "" {
		return models.NewValidationError("Payment type must be a nonempty string.")
	}
	return validation.Username(in.PaymentUsername)
}

// List returns every payment profile, or one user's, oldest first.
func (s *PaymentService) List(ctx context.Context, authorUsername string) ([]*models.PaymentProfile, error) {
	if authorUsername == "" {
		return s.paymentRepo.List(ctx)
	}
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByUser(ctx, author.ID)
}

func (s *PaymentService) Create(ctx context.Context, in PaymentProfileInput) (*models.PaymentProfile, error) {
	if err := validatePaymentFields(in); err != nil {
		return nil, err
	}
	profile := &models.PaymentProfile{
		UserID:          in.ActorID,
		PaymentType:     strings.TrimSpace(in.PaymentType),
		PaymentUsername: in.PaymentUsername,
		PaymentLink:     strings.TrimSpace(in.PaymentLink),
	}
	if err := s.paymentRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByID(ctx, profile.ID)
}

func (s *PaymentService) getOwned(ctx context.Context, actorID, profileID uint) (*models.PaymentProfile, error) {
	profile, err := s.paymentRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != actorID {
		return nil, models.NewForbiddenError("Cannot modify other users' fritterPay.")
	}
	return profile, nil
}

// Update replaces the payment type and username. An empty link keeps the
// stored one. Listings created earlier keep their snapshot.
func (s *PaymentService) Update(ctx context.Context, in PaymentProfileInput) (*models.PaymentProfile, error) {
	profile, err := s.getOwned(ctx, in.ActorID, in.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := validatePaymentFields(in); err != nil {
		return nil, err
	}

	profile.PaymentType = strings.TrimSpace(in.PaymentType)
	profile.PaymentUsername = in.PaymentUsername
	if link := strings.TrimSpace(in.PaymentLink); link != "" {
		profile.PaymentLink = link
	}
	if err := s.paymentRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *PaymentService) Delete(ctx context.Context, actorID, profileID uint) error {
	if _, err := s.getOwned(ctx, actorID, profileID); err != nil {
		return err
	}
	return s.paymentRepo.Delete(ctx, profileID)
}
