// Package service holds the freet lifecycle, payment profile and account
// operations. Every operation takes the acting user explicitly.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fritter/internal/middleware"
	"fritter/internal/models"
	"fritter/internal/notifications"
	"fritter/internal/observability"
	"fritter/internal/repository"
	"fritter/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// EventPublisher delivers realtime events to connected clients.
type EventPublisher interface {
	Publish(ctx context.Context, ev notifications.Event) error
}

// Editable listing fields.
const (
	ListingFieldName       = "listingName"
	ListingFieldPrice      = "listingPrice"
	ListingFieldLocation   = "listingLocation"
	ListingFieldExpiration = "expiration"
	ListingFieldStatus     = "listingStatus"
)

type FreetService struct {
	freetRepo   repository.FreetRepository
	paymentRepo repository.PaymentProfileRepository
	userRepo    repository.UserRepository
	events      EventPublisher
	limits      validation.Limits
	now         func() time.Time
}

type CreateFreetInput struct {
	AuthorID        uint
	Content         string
	FreetType       string
	Expiration      string
	ListingName     string
	ListingPrice    string
	ListingLocation string
}

type EditFreetInput struct {
	ActorID    uint
	FreetID    uint
	Content    string
	Expiration string
}

type EditListingInput struct {
	ActorID uint
	FreetID uint
	Field   string
	Value   string
}

type ListListingsInput struct {
	AuthorUsername string
	Status         string
}

func NewFreetService(
	freetRepo repository.FreetRepository,
	paymentRepo repository.PaymentProfileRepository,
	userRepo repository.UserRepository,
	events EventPublisher,
	limits validation.Limits,
) *FreetService {
	return &FreetService{
		freetRepo:   freetRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		events:      events,
		limits:      limits,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (s *FreetService) WithClock(now func() time.Time) *FreetService {
	s.now = now
	return s
}

func (s *FreetService) clock() time.Time {
	return s.now().UTC()
}

func (s *FreetService) publish(ctx context.Context, ev notifications.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("type", ev.Type), slog.String("error", err.Error()))
	}
}

// variant validates the type-specific part of a create request.
func (s *FreetService) variant(in CreateFreetInput, now time.Time) (models.FreetVariant, error) {
	switch models.FreetType(strings.ToLower(strings.TrimSpace(in.FreetType))) {
	case "", models.FreetTypeDefault:
		return models.DefaultFreet{}, nil

	case models.FreetTypeFleeting:
		if strings.TrimSpace(in.Expiration) == "" {
			return nil, models.NewValidationError("Fleeting freets need an expiration date.")
		}
		exp, err := validation.ParseExpiration(in.Expiration)
		if err != nil {
			return nil, err
		}
		if err := validation.FutureExpiration(exp, now); err != nil {
			return nil, err
		}
		return models.FleetingFreet{Expiration: exp}, nil

	case models.FreetTypeMerchant:
		if err := s.limits.ListingName(in.ListingName); err != nil {
			return nil, err
		}
		price, err := validation.ParsePrice(in.ListingPrice)
		if err != nil {
			return nil, err
		}
		v := models.MerchantFreet{Listing: models.ListingDraft{
			Name:     in.ListingName,
			Price:    price,
			Location: in.ListingLocation,
		}}
		if strings.TrimSpace(in.Expiration) != "" {
			exp, err := validation.ParseExpiration(in.Expiration)
			if err != nil {
				return nil, err
			}
			if err := validation.FutureExpiration(exp, now); err != nil {
				return nil, err
			}
			v.Expiration = exp
		}
		return v, nil

	default:
		return nil, models.NewValidationError("Freet type must be default, fleeting or merchant.")
	}
}

// Create validates and stores a new freet. Merchant freets get their listing
// in the same transaction, snapshotting the author's oldest payment profile.
func (s *FreetService) Create(ctx context.Context, in CreateFreetInput) (freet *models.Freet, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FreetService", "Create",
		attribute.String("freet.type", in.FreetType))
	defer func() { observability.EndSpan(span, err) }()

	now := s.clock()
	if err := s.limits.FreetContent(in.Content); err != nil {
		return nil, err
	}
	variant, err := s.variant(in, now)
	if err != nil {
		return nil, err
	}

	freet = models.NewFreet(in.AuthorID, in.Content, variant, now)
	if mv, ok := variant.(models.MerchantFreet); ok {
		profile, err := s.paymentRepo.FirstByUser(ctx, in.AuthorID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, models.NewPreconditionError("Connect your fritterPay to create a merchant freet.")
		}
		freet.AttachListing(mv.Listing, profile)
	}
	if err := freet.CheckInvariant(); err != nil {
		return nil, err
	}

	if err := s.freetRepo.Create(ctx, freet); err != nil {
		return nil, err
	}
	observability.FreetsCreated.WithLabelValues(string(freet.FreetType)).Inc()
	observability.RecordTransition(observability.TransitionCreated)

	created, err := s.freetRepo.GetByID(ctx, freet.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.Event{Type: notifications.EventFreetCreated, Payload: models.NewFreetResponse(created)})
	return created, nil
}

// getOwned loads a freet and checks that actorID wrote it.
func (s *FreetService) getOwned(ctx context.Context, actorID, freetID uint) (*models.Freet, error) {
	freet, err := s.freetRepo.GetByID(ctx, freetID)
	if err != nil {
		return nil, err
	}
	if freet.AuthorID != actorID {
		return nil, models.NewForbiddenError("Cannot modify other users' freets.")
	}
	return freet, nil
}

// Edit replaces a freet's content. An expiration is honoured for fleeting
// freets only.
func (s *FreetService) Edit(ctx context.Context, in EditFreetInput) (*models.Freet, error) {
	freet, err := s.getOwned(ctx, in.ActorID, in.FreetID)
	if err != nil {
		return nil, err
	}
	if err := s.limits.FreetContent(in.Content); err != nil {
		return nil, err
	}

	now := s.clock()
	var expiration time.Time
	setExpiration := freet.FreetType == models.FreetTypeFleeting && strings.TrimSpace(in.Expiration) != ""
	if setExpiration {
		expiration, err = validation.ParseExpiration(in.Expiration)
		if err != nil {
			return nil, err
		}
		if err := validation.FutureExpiration(expiration, now); err != nil {
			return nil, err
		}
	}

	freet.EditContent(in.Content, now)
	if setExpiration {
		freet.SetExpiration(expiration, now)
	}
	if err := s.freetRepo.Update(ctx, freet); err != nil {
		return nil, err
	}
	observability.RecordTransition(observability.TransitionEdited)
	s.publish(ctx, notifications.Event{Type: notifications.EventFreetUpdated, Payload: models.NewFreetResponse(freet)})
	return freet, nil
}

// SetArchived archives a live freet or unarchives an expired one.
func (s *FreetService) SetArchived(ctx context.Context, actorID, freetID uint, archive bool) (*models.Freet, error) {
	freet, err := s.getOwned(ctx, actorID, freetID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	event, transition := notifications.EventFreetArchived, observability.TransitionArchived
	if archive {
		if err := validation.CanArchive(freet, now); err != nil {
			return nil, err
		}
		freet.Archive(now)
	} else {
		if err := validation.CanUnarchive(freet, now); err != nil {
			return nil, err
		}
		freet.Unarchive(now)
		event, transition = notifications.EventFreetUnarchived, observability.TransitionUnarchived
	}

	if err := s.freetRepo.Update(ctx, freet); err != nil {
		return nil, err
	}
	observability.RecordTransition(transition)
	s.publish(ctx, notifications.Event{Type: event, Payload: models.NewFreetResponse(freet)})
	return freet, nil
}

// Delete removes a freet and its listing.
func (s *FreetService) Delete(ctx context.Context, actorID, freetID uint) error {
	freet, err := s.getOwned(ctx, actorID, freetID)
	if err != nil {
		return err
	}
	if err := s.freetRepo.Delete(ctx, freet); err != nil {
		return err
	}
	observability.RecordTransition(observability.TransitionDeleted)
	s.publish(ctx, notifications.Event{
		Type:    notifications.EventFreetDeleted,
		Payload: map[string]string{"_id": models.NewFreetResponse(freet).ID},
	})
	return nil
}

// List returns every freet, or one author's, newest-modified first.
func (s *FreetService) List(ctx context.Context, authorUsername string) ([]*models.Freet, error) {
	if authorUsername == "" {
		return s.freetRepo.List(ctx)
	}
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}
	return s.freetRepo.ListByAuthor(ctx, author.ID)
}

// Feed returns the freets that have not expired.
func (s *FreetService) Feed(ctx context.Context) ([]*models.Freet, error) {
	freets, err := s.freetRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterNotExpired(freets, s.clock()), nil
}

// Archived returns the actor's expired freets.
func (s *FreetService) Archived(ctx context.Context, actorID uint) ([]*models.Freet, error) {
	freets, err := s.freetRepo.ListByAuthor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return models.FilterExpired(freets, s.clock()), nil
}

// ListListings returns merchant freets, optionally narrowed to one seller and
// one listing status. An empty status or "all" keeps every status.
func (s *FreetService) ListListings(ctx context.Context, in ListListingsInput) ([]*models.Freet, error) {
	var status models.ListingStatus
	if raw := strings.TrimSpace(in.Status); raw != "" && !strings.EqualFold(raw, "all") {
		parsed, err := models.ParseListingStatus(raw)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	var freets []*models.Freet
	var err error
	if in.AuthorUsername == "" {
		freets, err = s.freetRepo.ListMerchant(ctx)
	} else {
		author, lookupErr := s.userRepo.GetByUsername(ctx, in.AuthorUsername)
		if lookupErr != nil {
			return nil, lookupErr
		}
		freets, err = s.freetRepo.ListByAuthor(ctx, author.ID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*models.Freet, 0, len(freets))
	for _, f := range freets {
		if f.FreetType != models.FreetTypeMerchant || f.Listing == nil {
			continue
		}
		if status != "" && f.Listing.Status != status {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func merchantListing(freet *models.Freet) (*models.Listing, error) {
	if freet.FreetType != models.FreetTypeMerchant || freet.Listing == nil {
		return nil, models.NewNotFoundError("Listing for freet", freet.ID)
	}
	return freet.Listing, nil
}

// Purchase sells a for-sale listing to buyerID. Sellers cannot buy their own
// listing, and buyers need a payment profile.
func (s *FreetService) Purchase(ctx context.Context, buyerID, freetID uint) (freet *models.Freet, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FreetService", "Purchase",
		attribute.Int("freet.id", int(freetID)))
	defer func() { observability.EndSpan(span, err) }()

	freet, err = s.freetRepo.GetByID(ctx, freetID)
	if err != nil {
		return nil, err
	}
	listing, err := merchantListing(freet)
	if err != nil {
		return nil, err
	}
	if freet.AuthorID == buyerID {
		return nil, models.NewForbiddenError("Cannot buy your own merchant freet.")
	}
	profile, err := s.paymentRepo.FirstByUser(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewPreconditionError("Connect your fritterPay to buy.")
	}
	buyer, err := s.userRepo.GetByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	from := listing.Status
	if err := listing.TransitionTo(models.ListingSold, buyer); err != nil {
		return nil, err
	}
	freet.Touch(s.clock())
	if err := s.freetRepo.UpdateWithListing(ctx, freet, from); err != nil {
		return nil, err
	}

	observability.ListingPurchases.Inc()
	observability.RecordTransition(observability.TransitionListing)
	s.publish(ctx, notifications.Event{
		Type:      notifications.EventListingSold,
		Payload:   models.NewListingResponse(freet),
		Recipient: freet.AuthorID,
	})
	return freet, nil
}

// EditListingField changes one field of a listing the actor is selling.
// Status may only move to deactivated here; sales go through Purchase.
func (s *FreetService) EditListingField(ctx context.Context, in EditListingInput) (*models.Freet, error) {
	freet, err := s.getOwned(ctx, in.ActorID, in.FreetID)
	if err != nil {
		return nil, err
	}
	listing, err := merchantListing(freet)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	from := listing.Status
	if in.Field != ListingFieldStatus && from != models.ListingForSale {
		return nil, models.NewPreconditionError("Only listings that are for sale can be edited.")
	}

	switch in.Field {
	case ListingFieldName:
		if err := s.limits.ListingName(in.Value); err != nil {
			return nil, err
		}
		listing.Name = in.Value
	case ListingFieldPrice:
		price, err := validation.ParsePrice(in.Value)
		if err != nil {
			return nil, err
		}
		listing.Price = price
	case ListingFieldLocation:
		location := strings.TrimSpace(in.Value)
		if location == "" {
			location = models.DefaultListingLocation
		}
		listing.Location = location
	case ListingFieldExpiration:
		exp, err := validation.ParseExpiration(in.Value)
		if err != nil {
			return nil, err
		}
		if err := validation.FutureExpiration(exp, now); err != nil {
			return nil, err
		}
		freet.SetExpiration(exp, now)
	case ListingFieldStatus:
		next, err := models.ParseListingStatus(in.Value)
		if err != nil {
			return nil, err
		}
		if next == models.ListingSold {
			return nil, models.NewValidationError("Listings can only be sold through a purchase.")
		}
		if err := listing.TransitionTo(next, nil); err != nil {
			return nil, err
		}
	default:
		return nil, models.NewValidationError("Unknown listing field " + in.Field + ".")
	}

	freet.Touch(now)
	if err := s.freetRepo.UpdateWithListing(ctx, freet, from); err != nil {
		return nil, err
	}
	observability.RecordTransition(observability.TransitionListing)
	s.publish(ctx, notifications.Event{Type: notifications.EventListingUpdated, Payload: models.NewListingResponse(freet)})
	return freet, nil
}
