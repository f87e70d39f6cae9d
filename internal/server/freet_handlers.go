package server

import (
	"fritter/internal/models"
	"fritter/internal/service"

	"github.com/gofiber/fiber/v2"
)

var createdMessages = map[models.FreetType]string{
	models.FreetTypeDefault:  "Your freet was created successfully.",
	models.FreetTypeFleeting: "Your fleeting was created successfully.",
	models.FreetTypeMerchant: "Your merchant freet was created successfully.",
}

// GetFreets handles GET /api/posts
// @Summary List freets
// @Description All freets, or one author's, newest-modified first
// @Tags freets
// @Produce json
// @Param author query string false "Author username"
// @Success 200 {array} models.FreetResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetFreets(c *fiber.Ctx) error {
	freets, err := s.freetService.List(c.UserContext(), c.Query("author"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(models.NewFreetResponses(freets))
}

// GetFeed handles GET /api/posts/feed
// @Summary Live feed
// @Description Freets that have not expired, newest-modified first
// @Tags freets
// @Produce json
// @Success 200 {array} models.FreetResponse
// @Router /posts/feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	freets, err := s.freetService.Feed(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(models.NewFreetResponses(freets))
}

// GetArchived handles GET /api/posts/archived
// @Summary Archived freets
// @Description The caller's expired freets
// @Tags freets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FreetResponse
// @Router /posts/archived [get]
func (s *Server) GetArchived(c *fiber.Ctx) error {
	freets, err := s.freetService.Archived(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(models.NewFreetResponses(freets))
}

// CreateFreet handles POST /api/posts
// @Summary Create a freet
// @Tags freets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{content=string,typeFreet=string,expiration=string,listingName=string,listingPrice=string,listingLocation=string} true "Freet"
// @Success 201 {object} object{message=string,freet=models.FreetResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreateFreet(c *fiber.Ctx) error {
	var req struct {
		Content         string      `json:"content"`
		TypeFreet       string      `json:"typeFreet"`
		Expiration      string      `json:"expiration"`
		ListingName     string      `json:"listingName"`
		ListingPrice    looseString `json:"listingPrice"`
		ListingLocation string      `json:"listingLocation"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	freet, err := s.freetService.Create(c.UserContext(), service.CreateFreetInput{
		AuthorID:        currentUserID(c),
		Content:         req.Content,
		FreetType:       req.TypeFreet,
		Expiration:      req.Expiration,
		ListingName:     req.ListingName,
		ListingPrice:    string(req.ListingPrice),
		ListingLocation: req.ListingLocation,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": createdMessages[freet.FreetType],
		"freet":   models.NewFreetResponse(freet),
	})
}

// UpdateFreet handles PATCH /api/posts/:id
// @Summary Edit a freet
// @Description Replaces the content; expiration applies to fleeting freets only
// @Tags freets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Freet ID"
// @Param request body object{content=string,expiration=string} true "Edit"
// @Success 200 {object} object{message=string,freet=models.FreetResponse}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) UpdateFreet(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content    string `json:"content"`
		Expiration string `json:"expiration"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	freet, err := s.freetService.Edit(c.UserContext(), service.EditFreetInput{
		ActorID:    currentUserID(c),
		FreetID:    id,
		Content:    req.Content,
		Expiration: req.Expiration,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Your freet was updated successfully.",
		"freet":   models.NewFreetResponse(freet),
	})
}

// SetArchiveStatus handles PATCH /api/posts/archived/:id
// @Summary Archive or unarchive a freet
// @Description archiveStatus "archive" archives; any other value unarchives
// @Tags freets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Freet ID"
// @Param request body object{archiveStatus=string} true "Archive status"
// @Success 200 {object} object{message=string,freet=models.FreetResponse}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/archived/{id} [patch]
func (s *Server) SetArchiveStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		ArchiveStatus string `json:"archiveStatus"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	archive := req.ArchiveStatus == "archive"
	freet, err := s.freetService.SetArchived(c.UserContext(), currentUserID(c), id, archive)
	if err != nil {
		return respondServiceError(c, err)
	}
	message := "Your freet has been unarchived successfully"
	if archive {
		message = "Your freet has been archived successfully"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"freet":   models.NewFreetResponse(freet),
	})
}

// DeleteFreet handles DELETE /api/posts/:id
// @Summary Delete a freet
// @Description Deletes the freet and its listing
// @Tags freets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Freet ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeleteFreet(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.freetService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Your freet was deleted successfully."})
}
