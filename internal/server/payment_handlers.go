package server

import (
	"fritter/internal/models"
	"fritter/internal/service"

	"github.com/gofiber/fiber/v2"
)

type paymentProfileRequest struct {
	PaymentType     string `json:"paymentType"`
	PaymentUsername string `json:"paymentUsername"`
	PaymentLink     string `json:"paymentLink"`
}

// GetPaymentProfiles handles GET /api/payment-profiles
// @Summary List fritterPay profiles
// @Tags fritterPay
// @Produce json
// @Param author query string false "Owner username"
// @Success 200 {array} models.PaymentProfileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payment-profiles [get]
func (s *Server) GetPaymentProfiles(c *fiber.Ctx) error {
	profiles, err := s.paymentService.List(c.UserContext(), c.Query("author"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(models.NewPaymentProfileResponses(profiles))
}

// CreatePaymentProfile handles POST /api/payment-profiles
// @Summary Connect fritterPay
// @Tags fritterPay
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{paymentType=string,paymentUsername=string,paymentLink=string} true "Profile"
// @Success 201 {object} object{message=string,fritterPay=models.PaymentProfileResponse}
// @Failure 400 {object} models.ErrorResponse
// @Router /payment-profiles [post]
func (s *Server) CreatePaymentProfile(c *fiber.Ctx) error {
	var req paymentProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.paymentService.Create(c.UserContext(), service.PaymentProfileInput{
		ActorID:         currentUserID(c),
		PaymentType:     req.PaymentType,
		PaymentUsername: req.PaymentUsername,
		PaymentLink:     req.PaymentLink,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Your fritterPay information was added successfully.",
		"fritterPay": models.NewPaymentProfileResponse(profile),
	})
}

// UpdatePaymentProfile handles PUT /api/payment-profiles/:id
// @Summary Update fritterPay
// @Description An empty paymentLink keeps the stored link. Existing listings keep their snapshot.
// @Tags fritterPay
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param request body object{paymentType=string,paymentUsername=string,paymentLink=string} true "Profile"
// @Success 200 {object} object{message=string,fritterPay=models.PaymentProfileResponse}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payment-profiles/{id} [put]
func (s *Server) UpdatePaymentProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req paymentProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.paymentService.Update(c.UserContext(), service.PaymentProfileInput{
		ActorID:         currentUserID(c),
		ProfileID:       id,
		PaymentType:     req.PaymentType,
		PaymentUsername: req.PaymentUsername,
		PaymentLink:     req.PaymentLink,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":    "fritterPay was updated successfully.",
		"fritterPay": models.NewPaymentProfileResponse(profile),
	})
}

// DeletePaymentProfile handles DELETE /api/payment-profiles/:id
// @Summary Remove fritterPay
// @Tags fritterPay
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payment-profiles/{id} [delete]
func (s *Server) DeletePaymentProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.paymentService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Your fritterPay entry was deleted successfully."})
}
