package models

import "time"

// FreetType tags which variant a stored freet belongs to.
type FreetType string

const (
	FreetTypeDefault  FreetType = "default"
	FreetTypeFleeting FreetType = "fleeting"
	FreetTypeMerchant FreetType = "merchant"
)

// NeverExpires is the expiration sentinel for freets that do not expire.
var NeverExpires = time.Date(4000, time.January, 1, 0, 0, 0, 0, time.UTC)

// archiveBackdate is how far into the past Archive moves the expiration.
const archiveBackdate = 24 * time.Hour

// Freet represents a post in the Fritter application.
type Freet struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"author"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	FreetType  FreetType `gorm:"size:16;not null;index" json:"freet_type"`
	Edited     bool      `gorm:"not null" json:"edited"`
	Expiration time.Time `gorm:"not null;index" json:"expiration"`
	// Listing is present iff FreetType is merchant.
	Listing    *Listing  `gorm:"foreignKey:FreetID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `gorm:"not null;index" json:"modified_at"`
}

// FreetVariant is the per-type payload supplied when a freet is created.
// Only DefaultFreet, FleetingFreet and MerchantFreet implement it.
type FreetVariant interface {
	Type() FreetType
	expiresAt() time.Time
}

// DefaultFreet is a plain post that never expires.
type DefaultFreet struct{}

// FleetingFreet disappears from the feed once Expiration passes.
type FleetingFreet struct {
	Expiration time.Time
}

// MerchantFreet is a commerce post; it always carries a listing.
// A zero Expiration means the listing never expires.
type MerchantFreet struct {
	Expiration time.Time
	Listing    ListingDraft
}

func (DefaultFreet) Type() FreetType  { return FreetTypeDefault }
func (FleetingFreet) Type() FreetType { return FreetTypeFleeting }
func (MerchantFreet) Type() FreetType { return FreetTypeMerchant }

func (DefaultFreet) expiresAt() time.Time    { return NeverExpires }
func (v FleetingFreet) expiresAt() time.Time { return v.Expiration }
func (v MerchantFreet) expiresAt() time.Time {
	if v.Expiration.IsZero() {
		return NeverExpires
	}
	return v.Expiration
}

// NewFreet builds a freet for the given variant. Merchant freets still need
// AttachListing before they satisfy CheckInvariant.
func NewFreet(authorID uint, content string, variant FreetVariant, now time.Time) *Freet {
	return &Freet{
		AuthorID:   authorID,
		Content:    content,
		FreetType:  variant.Type(),
		Expiration: variant.expiresAt().UTC(),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// AttachListing builds the listing for a merchant freet, snapshotting the
// seller's payment details by value.
func (f *Freet) AttachListing(draft ListingDraft, payment *PaymentProfile) {
	f.Listing = NewListing(draft, payment)
}

// CheckInvariant reports a merchant freet without a listing, or a listing on
// any other type.
func (f *Freet) CheckInvariant() error {
	switch f.FreetType {
	case FreetTypeMerchant:
		if f.Listing == nil {
			return NewValidationError("Merchant freet must have a listing")
		}
	case FreetTypeDefault, FreetTypeFleeting:
		if f.Listing != nil {
			return NewValidationError("Only merchant freets may have a listing")
		}
	default:
		return NewValidationError("Invalid freet type")
	}
	return nil
}

// IsExpired reports whether the freet has expired at now. A freet whose
// expiration equals now is expired.
func (f *Freet) IsExpired(now time.Time) bool {
	return !f.Expiration.After(now)
}

// IsNotExpired is the exact complement of IsExpired.
func (f *Freet) IsNotExpired(now time.Time) bool {
	return f.Expiration.After(now)
}

// Touch marks the freet as modified at now.
func (f *Freet) Touch(now time.Time) {
	f.ModifiedAt = now
}

// SetExpiration overwrites the expiration. It never changes FreetType.
func (f *Freet) SetExpiration(expiration, now time.Time) {
	f.Expiration = expiration.UTC()
	f.Touch(now)
}

// EditContent replaces the body and flags the freet as edited.
func (f *Freet) EditContent(content string, now time.Time) {
	f.Content = content
	f.Edited = true
	f.Touch(now)
}

// Archive expires the freet one day in the past. Default freets become
// fleeting so that archived posts behave like expired fleeting posts;
// merchant freets keep their type.
func (f *Freet) Archive(now time.Time) {
	f.SetExpiration(now.Add(-archiveBackdate), now)
	if f.FreetType == FreetTypeDefault {
		f.FreetType = FreetTypeFleeting
	}
}

// Unarchive restores the never-expires sentinel. Fleeting freets become
// default; merchant freets keep their type.
func (f *Freet) Unarchive(now time.Time) {
	f.SetExpiration(NeverExpires, now)
	if f.FreetType == FreetTypeFleeting {
		f.FreetType = FreetTypeDefault
	}
}

// FilterExpired returns the freets expired at now, preserving order.
func FilterExpired(freets []*Freet, now time.Time) []*Freet {
	out := make([]*Freet, 0, len(freets))
	for _, f := range freets {
		if f.IsExpired(now) {
			out = append(out, f)
		}
	}
	return out
}

// FilterNotExpired returns the freets still live at now, preserving order.
func FilterNotExpired(freets []*Freet, now time.Time) []*Freet {
	out := make([]*Freet, 0, len(freets))
	for _, f := range freets {
		if f.IsNotExpired(now) {
			out = append(out, f)
		}
	}
	return out
}
