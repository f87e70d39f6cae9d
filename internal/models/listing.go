package models

import (
	"fmt"
	"strings"
	"time"
)

// ListingStatus is the sale state of a merchant listing.
type ListingStatus string

const (
	ListingForSale     ListingStatus = "forsale"
	ListingSold        ListingStatus = "sold"
	ListingDeactivated ListingStatus = "deactivated"
)

// DefaultListingLocation is stored when a seller gives no location.
const DefaultListingLocation = "none"

// ListingDraft is the seller-supplied part of a listing.
type ListingDraft struct {
	Name     string
	Price    int64
	Location string
}

// Listing holds the for-sale metadata of a merchant freet.
type Listing struct {
	ID      uint          `gorm:"primaryKey" json:"id"`
	FreetID uint          `gorm:"uniqueIndex;not null" json:"freet_id"`
	Status  ListingStatus `gorm:"size:16;not null;index" json:"status"`
	Name    string        `gorm:"size:80;not null" json:"name"`
	Price   int64         `gorm:"not null" json:"price"`
	// Location defaults to DefaultListingLocation.
	Location string `gorm:"not null" json:"location"`
	// Payment fields are copied from the seller's payment profile at creation.
	PaymentUsername string `gorm:"not null" json:"payment_username"`
	PaymentType     string `gorm:"not null" json:"payment_type"`
	// BuyerID is set iff Status is sold. The buyer's username is kept with it
	// so a sold listing outlives the buyer's account.
	BuyerID       *uint     `gorm:"index" json:"buyer_id,omitempty"`
	BuyerUsername string    `json:"buyer_username,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewListing creates a for-sale listing from a draft and a payment snapshot.
func NewListing(draft ListingDraft, payment *PaymentProfile) *Listing {
	location := strings.TrimSpace(draft.Location)
	if location == "" {
		location = DefaultListingLocation
	}
	l := &Listing{
		Status:   ListingForSale,
		Name:     draft.Name,
		Price:    draft.Price,
		Location: location,
	}
	if payment != nil {
		l.PaymentUsername = payment.PaymentUsername
		l.PaymentType = payment.PaymentType
	}
	return l
}

// listingTransitions lists every legal status change. sold and deactivated
// are absorbing.
var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingForSale: {ListingSold, ListingDeactivated},
}

// ParseListingStatus validates a client-supplied status.
func ParseListingStatus(raw string) (ListingStatus, error) {
	switch s := ListingStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case ListingForSale, ListingSold, ListingDeactivated:
		return s, nil
	default:
		return "", NewValidationError(fmt.Sprintf("Invalid listing status %q", raw))
	}
}

// CanTransitionTo reports whether next is reachable from the current status.
func (l *Listing) CanTransitionTo(next ListingStatus) bool {
	for _, s := range listingTransitions[l.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the listing to next. A buyer is required for, and only
// accepted with, the sold status.
func (l *Listing) TransitionTo(next ListingStatus, buyer *User) error {
	if !l.CanTransitionTo(next) {
		if l.Status == ListingSold {
			return NewPreconditionError("You cannot buy because it is sold.")
		}
		return NewPreconditionError(fmt.Sprintf("Listing cannot change from %s to %s", l.Status, next))
	}
	switch next {
	case ListingSold:
		if buyer == nil {
			return NewValidationError("A buyer is required to mark a listing sold")
		}
		id := buyer.ID
		l.BuyerID = &id
		l.BuyerUsername = buyer.Username
	default:
		if buyer != nil {
			return NewValidationError("A buyer may only be recorded on a sale")
		}
		l.BuyerID = nil
		l.BuyerUsername = ""
	}
	l.Status = next
	return nil
}
