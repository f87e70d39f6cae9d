package models

import (
	"strconv"
	"time"
)

// FreetResponse is the client-facing shape of a freet.
type FreetResponse struct {
	ID           string           `json:"_id"`
	Author       string           `json:"author"`
	DateCreated  string           `json:"dateCreated"`
	Content      string           `json:"content"`
	DateModified string           `json:"dateModified"`
	Expiration   string           `json:"expiration"`
	FreetType    FreetType        `json:"freetType"`
	Edited       bool             `json:"edited"`
	Listing      *ListingResponse `json:"merchantFreet,omitempty"`
}

// ListingResponse is the client-facing shape of a merchant listing.
type ListingResponse struct {
	ID              string        `json:"_id"`
	FreetID         string        `json:"freetId"`
	Content         string        `json:"content"`
	Author          string        `json:"author"`
	DateModified    string        `json:"dateModified"`
	Expiration      string        `json:"expiration"`
	ListingStatus   ListingStatus `json:"listingStatus"`
	ListingName     string        `json:"listingName"`
	ListingPrice    int64         `json:"listingPrice"`
	ListingLocation string        `json:"listingLocation"`
	PaymentUsername string        `json:"paymentUsername"`
	PaymentType     string        `json:"paymentType"`
	Buyer           string        `json:"buyer,omitempty"`
}

// PaymentProfileResponse is the client-facing shape of a FritterPay record.
type PaymentProfileResponse struct {
	ID              string `json:"_id"`
	Author          string `json:"author"`
	PaymentType     string `json:"paymentType"`
	PaymentUsername string `json:"paymentUsername"`
	PaymentLink     string `json:"paymentLink"`
}

// UserResponse is the client-facing shape of an account.
type UserResponse struct {
	ID         string `json:"_id"`
	Username   string `json:"username"`
	DateJoined string `json:"dateJoined"`
}

// FormatDate renders t as e.g. "October 17th 2026, 3:04:05 pm" in UTC.
func FormatDate(t time.Time) string {
	t = t.UTC()
	return t.Format("January 2") + ordinalSuffix(t.Day()) + t.Format(" 2006, 3:04:05 pm")
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// NewFreetResponse projects a freet. Author must be preloaded; the raw author
// id is never emitted.
func NewFreetResponse(f *Freet) FreetResponse {
	resp := FreetResponse{
		ID:           formatID(f.ID),
		Author:       f.Author.Username,
		DateCreated:  FormatDate(f.CreatedAt),
		Content:      f.Content,
		DateModified: FormatDate(f.ModifiedAt),
		Expiration:   FormatDate(f.Expiration),
		FreetType:    f.FreetType,
		Edited:       f.Edited,
	}
	if f.FreetType == FreetTypeMerchant && f.Listing != nil {
		listing := NewListingResponse(f)
		resp.Listing = &listing
	}
	return resp
}

// NewFreetResponses projects a slice of freets, preserving order.
func NewFreetResponses(freets []*Freet) []FreetResponse {
	out := make([]FreetResponse, 0, len(freets))
	for _, f := range freets {
		out = append(out, NewFreetResponse(f))
	}
	return out
}

// NewListingResponse projects the listing of a merchant freet joined with
// its parent's content, author and dates.
func NewListingResponse(f *Freet) ListingResponse {
	l := f.Listing
	resp := ListingResponse{
		ID:              formatID(l.ID),
		FreetID:         formatID(f.ID),
		Content:         f.Content,
		Author:          f.Author.Username,
		DateModified:    FormatDate(f.ModifiedAt),
		Expiration:      FormatDate(f.Expiration),
		ListingStatus:   l.Status,
		ListingName:     l.Name,
		ListingPrice:    l.Price,
		ListingLocation: l.Location,
		PaymentUsername: l.PaymentUsername,
		PaymentType:     l.PaymentType,
	}
	if l.Status == ListingSold {
		resp.Buyer = l.BuyerUsername
	}
	return resp
}

// NewListingResponses projects merchant freets, skipping any without a listing.
func NewListingResponses(freets []*Freet) []ListingResponse {
	out := make([]ListingResponse, 0, len(freets))
	for _, f := range freets {
		if f.Listing == nil {
			continue
		}
		out = append(out, NewListingResponse(f))
	}
	return out
}

// NewPaymentProfileResponse projects a payment profile. User must be preloaded.
func NewPaymentProfileResponse(p *PaymentProfile) PaymentProfileResponse {
	return PaymentProfileResponse{
		ID:              formatID(p.ID),
		Author:          p.User.Username,
		PaymentType:     p.PaymentType,
		PaymentUsername: p.PaymentUsername,
		PaymentLink:     p.PaymentLink,
	}
}

// NewPaymentProfileResponses projects a slice of payment profiles.
func NewPaymentProfileResponses(profiles []*PaymentProfile) []PaymentProfileResponse {
	out := make([]PaymentProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewPaymentProfileResponse(p))
	}
	return out
}

// NewUserResponse projects an account without its password hash.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         formatID(u.ID),
		Username:   u.Username,
		DateJoined: FormatDate(u.CreatedAt),
	}
}
