package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fritter/internal/models"
	"fritter/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 17, 15, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// freetRepoStub is a stub for repository.FreetRepository.
type freetRepoStub struct {
	createFn             func(context.Context, *models.Freet) error
	getByIDFn            func(context.Context, uint) (*models.Freet, error)
	listFn               func(context.Context) ([]*models.Freet, error)
	listByAuthorFn       func(context.Context, uint) ([]*models.Freet, error)
	listMerchantFn       func(context.Context) ([]*models.Freet, error)
	listExpiredBetweenFn func(context.Context, time.Time, time.Time) ([]*models.Freet, error)
	updateFn             func(context.Context, *models.Freet) error
	updateWithListingFn  func(context.Context, *models.Freet, models.ListingStatus) error
	deleteFn             func(context.Context, *models.Freet) error
}

func (s *freetRepoStub) Create(ctx context.Context, f *models.Freet) error { return s.createFn(ctx, f) }
func (s *freetRepoStub) GetByID(ctx context.Context, id uint) (*models.Freet, error) {
	return s.getByIDFn(ctx, id)
}
func (s *freetRepoStub) List(ctx context.Context) ([]*models.Freet, error) { return s.listFn(ctx) }
func (s *freetRepoStub) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Freet, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *freetRepoStub) ListMerchant(ctx context.Context) ([]*models.Freet, error) {
	return s.listMerchantFn(ctx)
}
func (s *freetRepoStub) ListExpiredBetween(ctx context.Context, after, upTo time.Time) ([]*models.Freet, error) {
	return s.listExpiredBetweenFn(ctx, after, upTo)
}
func (s *freetRepoStub) Update(ctx context.Context, f *models.Freet) error { return s.updateFn(ctx, f) }
func (s *freetRepoStub) UpdateWithListing(ctx context.Context, f *models.Freet, from models.ListingStatus) error {
	return s.updateWithListingFn(ctx, f, from)
}
func (s *freetRepoStub) Delete(ctx context.Context, f *models.Freet) error { return s.deleteFn(ctx, f) }

// freetRepoWith returns a stub serving a single stored freet.
func freetRepoWith(stored *models.Freet) *freetRepoStub {
	return &freetRepoStub{
		createFn: func(_ context.Context, f *models.Freet) error { f.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Freet, error) {
			if stored == nil || stored.ID != id {
				return nil, models.NewNotFoundError("Freet", id)
			}
			return stored, nil
		},
		listFn:               func(_ context.Context) ([]*models.Freet, error) { return []*models.Freet{stored}, nil },
		listByAuthorFn:       func(_ context.Context, _ uint) ([]*models.Freet, error) { return []*models.Freet{stored}, nil },
		listMerchantFn:       func(_ context.Context) ([]*models.Freet, error) { return []*models.Freet{stored}, nil },
		listExpiredBetweenFn: func(_ context.Context, _, _ time.Time) ([]*models.Freet, error) { return nil, nil },
		updateFn:             func(_ context.Context, _ *models.Freet) error { return nil },
		updateWithListingFn:  func(_ context.Context, _ *models.Freet, _ models.ListingStatus) error { return nil },
		deleteFn:             func(_ context.Context, _ *models.Freet) error { return nil },
	}
}

// paymentRepoStub is a stub for repository.PaymentProfileRepository.
type paymentRepoStub struct {
	profiles map[uint]*models.PaymentProfile
	updated  *models.PaymentProfile
	deleted  uint
}

func newPaymentRepoStub(profiles ...*models.PaymentProfile) *paymentRepoStub {
	s := &paymentRepoStub{profiles: map[uint]*models.PaymentProfile{}}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *paymentRepoStub) Create(_ context.Context, p *models.PaymentProfile) error {
	p.ID = uint(len(s.profiles) + 100)
	s.profiles[p.ID] = p
	return nil
}
func (s *paymentRepoStub) GetByID(_ context.Context, id uint) (*models.PaymentProfile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, models.NewNotFoundError("FritterPay", id)
	}
	cp := *p
	return &cp, nil
}
func (s *paymentRepoStub) List(_ context.Context) ([]*models.PaymentProfile, error) {
	var out []*models.PaymentProfile
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}
func (s *paymentRepoStub) ListByUser(_ context.Context, userID uint) ([]*models.PaymentProfile, error) {
	var out []*models.PaymentProfile
	for _, p := range s.profiles {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (s *paymentRepoStub) FirstByUser(_ context.Context, userID uint) (*models.PaymentProfile, error) {
	var first *models.PaymentProfile
	for _, p := range s.profiles {
		if p.UserID == userID && (first == nil || p.ID < first.ID) {
			first = p
		}
	}
	return first, nil
}
func (s *paymentRepoStub) Update(_ context.Context, p *models.PaymentProfile) error {
	s.updated = p
	return nil
}
func (s *paymentRepoStub) Delete(_ context.Context, id uint) error {
	s.deleted = id
	return nil
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	users map[uint]*models.User
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: map[uint]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userRepoStub) Create(_ context.Context, u *models.User) error {
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return models.NewConflictError("An account with username " + u.Username + " already exists.")
		}
	}
	u.ID = uint(len(s.users) + 1)
	s.users[u.ID] = u
	return nil
}
func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return u, nil
}
func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", username)
}
func (s *userRepoStub) Delete(_ context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return models.NewNotFoundError("User", id)
	}
	delete(s.users, id)
	return nil
}

// eventRecorder captures published events.
type eventRecorder struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *eventRecorder) Publish(_ context.Context, ev notifications.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

var (
	alice = &models.User{ID: 1, Username: "alice"}
	bob   = &models.User{ID: 2, Username: "bob"}
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}
