package server

import (
	"fritter/internal/models"
	"fritter/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetListings handles GET /api/posts/listings
// @Summary Browse the marketplace
// @Description Merchant freets newest-modified first, optionally narrowed by seller and listing status
// @Tags listings
// @Produce json
// @Param author query string false "Seller username"
// @Param listingStatus query string false "forsale, sold, deactivated or all"
// @Success 200 {array} models.FreetResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/listings [get]
func (s *Server) GetListings(c *fiber.Ctx) error {
	freets, err := s.freetService.ListListings(c.UserContext(), service.ListListingsInput{
		AuthorUsername: c.Query("author"),
		Status:         c.Query("listingStatus"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(models.NewFreetResponses(freets))
}

// PurchaseListing handles PATCH /api/posts/listings/purchase/:id
// @Summary Buy a listing
// @Description id is the merchant freet's id. The buyer needs a fritterPay profile.
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Freet ID"
// @Success 200 {object} object{message=string,freet=models.FreetResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/listings/purchase/{id} [patch]
func (s *Server) PurchaseListing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	freet, err := s.freetService.Purchase(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "merchantFreet was successfully purchased",
		"freet":   models.NewFreetResponse(freet),
	})
}

// UpdateListing handles PATCH /api/posts/:id/listing
// @Summary Edit one listing field
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Freet ID"
// @Param request body object{field=string,value=string} true "listingName, listingPrice, listingLocation, expiration or listingStatus"
// @Success 200 {object} object{message=string,freet=models.FreetResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id}/listing [patch]
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Field string      `json:"field"`
		Value looseString `json:"value"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	freet, err := s.freetService.EditListingField(c.UserContext(), service.EditListingInput{
		ActorID: currentUserID(c),
		FreetID: id,
		Field:   req.Field,
		Value:   string(req.Value),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Your listing was updated successfully.",
		"freet":   models.NewFreetResponse(freet),
	})
}
