// Package seed fills the database with demo data, either from a YAML
// fixture or from generated accounts. All writes go through the service
// layer so seeded listings carry real payment snapshots.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"fritter/internal/middleware"
	"fritter/internal/models"
	"fritter/internal/repository"
	"fritter/internal/service"
	"fritter/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is given to every seeded account unless a fixture says otherwise.
const DefaultPassword = "password123"

var paymentTypes = []string{"venmo", "paypal", "cashapp", "zelle"}

var nonWord = regexp.MustCompile(`\W`)

// Options configures generated data.
type Options struct {
	Users         int
	FreetsPerUser int
	// PaymentPercent of users connect fritterPay; MerchantPercent of their
	// freets are merchant listings.
	PaymentPercent  int
	MerchantPercent int
	// Seed makes the output reproducible; zero picks a random seed.
	Seed int64
}

// Result counts what a seeding run created.
type Result struct {
	Users           int
	PaymentProfiles int
	Freets          int
	Listings        int
	Purchases       int
}

type Seeder struct {
	db       *gorm.DB
	users    *service.UserService
	payments *service.PaymentService
	freets   *service.FreetService
	limits   validation.Limits
	now      func() time.Time
}

// NewSeeder builds a Seeder over db. Seeding publishes no realtime events.
func NewSeeder(db *gorm.DB) *Seeder {
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentProfileRepository(db)
	freetRepo := repository.NewFreetRepository(db, 0)
	limits := validation.DefaultLimits()
	return &Seeder{
		db:       db,
		users:    service.NewUserService(userRepo),
		payments: service.NewPaymentService(paymentRepo, userRepo),
		freets:   service.NewFreetService(freetRepo, paymentRepo, userRepo, nil, limits),
		limits:   limits,
		now:      time.Now,
	}
}

// WithHashCost sets the bcrypt cost for seeded passwords.
func (s *Seeder) WithHashCost(cost int) *Seeder {
	s.users.WithHashCost(cost)
	return s
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll() error {
	tables := []any{&models.Listing{}, &models.Freet{}, &models.PaymentProfile{}, &models.User{}}
	for _, model := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", model, err)
		}
	}
	middleware.Logger.Info("database cleared")
	return nil
}

// ApplyFixture creates the fixture's accounts, profiles, freets and purchases.
func (s *Seeder) ApplyFixture(ctx context.Context, f *Fixture) (*Result, error) {
	res := &Result{}
	ids := make(map[string]uint, len(f.Users))
	listings := make(map[string]uint)

	for _, fu := range f.Users {
		user, err := s.users.Signup(ctx, fu.Username, f.Password)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", fu.Username, err)
		}
		ids[fu.Username] = user.ID
		res.Users++

		for _, p := range fu.PaymentProfiles {
			if _, err := s.payments.Create(ctx, service.PaymentProfileInput{
				ActorID:         user.ID,
				PaymentType:     p.Type,
				PaymentUsername: p.Username,
				PaymentLink:     p.Link,
			}); err != nil {
				return res, fmt.Errorf("fritterPay for %s: %w", fu.Username, err)
			}
			res.PaymentProfiles++
		}

		for _, ff := range fu.Freets {
			in := service.CreateFreetInput{AuthorID: user.ID, Content: ff.Content, FreetType: ff.Type}
			if ff.ExpiresIn != "" {
				d, _ := time.ParseDuration(ff.ExpiresIn)
				in.Expiration = s.now().Add(d).UTC().Format(time.RFC3339)
			}
			if ff.Listing != nil {
				in.ListingName = ff.Listing.Name
				in.ListingPrice = strconv.FormatInt(ff.Listing.Price, 10)
				in.ListingLocation = ff.Listing.Location
			}
			freet, err := s.freets.Create(ctx, in)
			if err != nil {
				return res, fmt.Errorf("freet by %s: %w", fu.Username, err)
			}
			res.Freets++
			if ff.Listing != nil {
				listings[listingKey(fu.Username, ff.Listing.Name)] = freet.ID
				res.Listings++
			}
		}
	}

	for _, p := range f.Purchases {
		if _, err := s.freets.Purchase(ctx, ids[p.Buyer], listings[listingKey(p.Seller, p.Listing)]); err != nil {
			return res, fmt.Errorf("purchase of %s by %s: %w", p.Listing, p.Buyer, err)
		}
		res.Purchases++
	}

	s.logResult("fixture applied", res)
	return res, nil
}

// SeedRandom generates opts.Users accounts with fake freets and listings.
func (s *Seeder) SeedRandom(ctx context.Context, opts Options) (*Result, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)
	res := &Result{}

	for i := 0; i < opts.Users; i++ {
		username := nonWord.ReplaceAllString(faker.Username(), "") + strconv.Itoa(i)
		user, err := s.users.Signup(ctx, username, DefaultPassword)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", username, err)
		}
		res.Users++

		hasPayment := faker.Number(1, 100) <= opts.PaymentPercent
		if hasPayment {
			if _, err := s.payments.Create(ctx, service.PaymentProfileInput{
				ActorID:         user.ID,
				PaymentType:     faker.RandomString(paymentTypes),
				PaymentUsername: username + "_pay",
				PaymentLink:     faker.URL(),
			}); err != nil {
				return res, err
			}
			res.PaymentProfiles++
		}

		for j := 0; j < opts.FreetsPerUser; j++ {
			in := service.CreateFreetInput{
				AuthorID: user.ID,
				Content:  truncate(faker.Sentence(12), s.limits.FreetMaxLength),
			}
			switch {
			case hasPayment && faker.Number(1, 100) <= opts.MerchantPercent:
				in.FreetType = string(models.FreetTypeMerchant)
				in.ListingName = truncate(faker.ProductName(), s.limits.ListingNameMaxLength)
				in.ListingPrice = strconv.Itoa(faker.Number(1, 500))
				in.ListingLocation = faker.City()
			case faker.Number(1, 4) == 1:
				in.FreetType = string(models.FreetTypeFleeting)
				in.Expiration = s.now().Add(time.Duration(faker.Number(1, 72)) * time.Hour).UTC().Format(time.RFC3339)
			}
			if _, err := s.freets.Create(ctx, in); err != nil {
				return res, fmt.Errorf("freet by %s: %w", username, err)
			}
			res.Freets++
			if in.FreetType == string(models.FreetTypeMerchant) {
				res.Listings++
			}
		}
	}

	s.logResult("random data seeded", res)
	return res, nil
}

func (s *Seeder) logResult(msg string, res *Result) {
	middleware.Logger.Info(msg,
		slog.Int("users", res.Users),
		slog.Int("payment_profiles", res.PaymentProfiles),
		slog.Int("freets", res.Freets),
		slog.Int("listings", res.Listings),
		slog.Int("purchases", res.Purchases),
	)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max])
}
