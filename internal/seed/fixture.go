package seed

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written demo data set.
type Fixture struct {
	// Password is shared by every fixture account.
	Password  string            `yaml:"password"`
	Users     []FixtureUser     `yaml:"users"`
	Purchases []FixturePurchase `yaml:"purchases"`
}

type FixtureUser struct {
	Username        string           `yaml:"username"`
	PaymentProfiles []FixtureProfile `yaml:"paymentProfiles"`
	Freets          []FixtureFreet   `yaml:"freets"`
}

type FixtureProfile struct {
	Type     string `yaml:"type"`
	Username string `yaml:"username"`
	Link     string `yaml:"link"`
}

type FixtureFreet struct {
	Content string `yaml:"content"`
	Type    string `yaml:"type"`
	// ExpiresIn is a Go duration relative to seeding time, e.g. "48h".
	ExpiresIn string          `yaml:"expiresIn"`
	Listing   *FixtureListing `yaml:"listing"`
}

type FixtureListing struct {
	Name     string `yaml:"name"`
	Price    int64  `yaml:"price"`
	Location string `yaml:"location"`
}

// FixturePurchase has Buyer buy Seller's listing called Listing.
type FixturePurchase struct {
	Buyer   string `yaml:"buyer"`
	Seller  string `yaml:"seller"`
	Listing string `yaml:"listing"`
}

// LoadFixture reads and validates a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML fixture and checks its cross references.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if f.Password == "" {
		f.Password = DefaultPassword
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func listingKey(seller, name string) string {
	return seller + "/" + name
}

func (f *Fixture) validate() error {
	users := make(map[string]bool, len(f.Users))
	listings := make(map[string]bool)
	for _, u := range f.Users {
		if users[u.Username] {
			return fmt.Errorf("fixture user %q is listed twice", u.Username)
		}
		users[u.Username] = true
		for i, fr := range u.Freets {
			if fr.ExpiresIn != "" {
				if _, err := time.ParseDuration(fr.ExpiresIn); err != nil {
					return fmt.Errorf("fixture user %q freet %d: bad expiresIn: %w", u.Username, i, err)
				}
			}
			isMerchant := strings.EqualFold(fr.Type, "merchant")
			if isMerchant != (fr.Listing != nil) {
				return fmt.Errorf("fixture user %q freet %d: listing must be set exactly on merchant freets", u.Username, i)
			}
			if fr.Listing != nil {
				listings[listingKey(u.Username, fr.Listing.Name)] = true
			}
		}
	}
	for _, p := range f.Purchases {
		if !users[p.Buyer] {
			return fmt.Errorf("fixture purchase by unknown user %q", p.Buyer)
		}
		if !listings[listingKey(p.Seller, p.Listing)] {
			return fmt.Errorf("fixture purchase of unknown listing %q by %q", p.Listing, p.Seller)
		}
	}
	return nil
}
