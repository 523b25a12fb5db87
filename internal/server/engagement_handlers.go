package server

import (
	"github.com/gofiber/fiber/v2"
)

type engagementRequest struct {
	Post uint `json:"post" form:"post"`
}

// ListLikes handles GET /api/v1/likes: the caller's likes.
// @Summary List my likes
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.EngagementView
// @Failure 401 {object} models.ErrorResponse
// @Router /likes [get]
func (s *Server) ListLikes(c *fiber.Ctx) error {
	likes, err := s.likes.ListMine(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likes)
}

// CreateLike handles POST /api/v1/likes
// @Summary Like a post
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post=int} true "Like"
// @Success 201 {object} service.EngagementView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /likes [post]
func (s *Server) CreateLike(c *fiber.Ctx) error {
	var req engagementRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	like, err := s.likes.Like(c.UserContext(), currentUserID(c), req.Post)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(like)
}

// DeleteLike handles DELETE /api/v1/likes/:id
// @Summary Remove an own like
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Like ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /likes/{id} [delete]
func (s *Server) DeleteLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.likes.Unlike(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListFavorites handles GET /api/v1/favorites: the caller's favorites.
// @Summary List my favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.EngagementView
// @Failure 401 {object} models.ErrorResponse
// @Router /favorites [get]
func (s *Server) ListFavorites(c *fiber.Ctx) error {
	favorites, err := s.favorites.ListMine(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(favorites)
}

// CreateFavorite handles POST /api/v1/favorites
// @Summary Favorite a post
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post=int} true "Favorite"
// @Success 201 {object} service.EngagementView
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /favorites [post]
func (s *Server) CreateFavorite(c *fiber.Ctx) error {
	var req engagementRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	favorite, err := s.favorites.Add(c.UserContext(), currentUserID(c), req.Post)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(favorite)
}

// DeleteFavorite handles DELETE /api/v1/favorites/:id
// @Summary Remove an own favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Favorite ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /favorites/{id} [delete]
func (s *Server) DeleteFavorite(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.favorites.Remove(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
