// Package validation holds the content-shape and temporal guards applied to
// client input before any write.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"fritter/internal/models"
)

// Default length limits.
const (
	DefaultFreetMaxLength       = 140
	DefaultListingNameMaxLength = 80
	PasswordMaxBytes            = 72
)

var usernameRegex = regexp.MustCompile(`^\w+$`)

// Limits bounds user-supplied text.
type Limits struct {
	FreetMaxLength       int
	ListingNameMaxLength int
}

// DefaultLimits returns the stock Fritter limits.
func DefaultLimits() Limits {
	return Limits{
		FreetMaxLength:       DefaultFreetMaxLength,
		ListingNameMaxLength: DefaultListingNameMaxLength,
	}
}

func boundedText(value, field string, max int) error {
	if strings.TrimSpace(value) == "" {
		return models.NewValidationError(fmt.Sprintf("%s must be at least one character long.", field))
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		return models.NewContentTooLongError(fmt.Sprintf("%s must be no more than %d characters.", field, max))
	}
	return nil
}

// FreetContent rejects blank and over-length freet bodies.
func (l Limits) FreetContent(content string) error {
	return boundedText(content, "Freet content", l.FreetMaxLength)
}

// ListingName rejects blank and over-length listing names.
func (l Limits) ListingName(name string) error {
	return boundedText(name, "Listing name", l.ListingNameMaxLength)
}

// ParsePrice parses a listing price, which must be a positive integer.
// Leading digits are honoured the way a lenient integer parse would.
func ParsePrice(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, models.NewValidationError("Listing price must be a positive integer.")
	}
	price, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || price <= 0 {
		return 0, models.NewValidationError("Listing price must be a positive integer.")
	}
	return price, nil
}

// Username checks the `^\w+$` shape shared by account and payment usernames.
func Username(username string) error {
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError("Username must be a nonempty alphanumeric string.")
	}
	return nil
}

// Password requires a non-blank password that bcrypt can hash.
func Password(password string) error {
	if strings.TrimSpace(password) == "" {
		return models.NewValidationError("Password must be a nonempty string.")
	}
	if len(password) > PasswordMaxBytes {
		return models.NewValidationError(fmt.Sprintf("Password must be at most %d bytes.", PasswordMaxBytes))
	}
	return nil
}

// ParseExpiration accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
func ParseExpiration(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, models.NewValidationError("Expiration must be a valid date.")
}

// FutureExpiration requires expiration to be strictly after now.
func FutureExpiration(expiration, now time.Time) error {
	if !expiration.After(now) {
		return models.NewValidationError("Expiration date must be in the future.")
	}
	return nil
}

// CanArchive allows archiving only a freet that has not expired yet.
func CanArchive(f *models.Freet, now time.Time) error {
	if f.IsExpired(now) {
		return models.NewPreconditionError("Freet is already archived.")
	}
	return nil
}

// CanUnarchive allows unarchiving only a freet that has expired.
func CanUnarchive(f *models.Freet, now time.Time) error {
	if f.IsNotExpired(now) {
		return models.NewPreconditionError("Cannot be unarchived.")
	}
	return nil
}
