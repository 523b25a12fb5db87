package server

import (
	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/v1/accounts/:id/follow
// @Summary Follow a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 201 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /accounts/{id}/follow [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.follows.Follow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Successfully followed!"})
}

// Unfollow handles DELETE /api/v1/accounts/:id/unfollow
// @Summary Unfollow a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /accounts/{id}/unfollow [delete]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.follows.Unfollow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowers handles GET /api/v1/accounts/followers: the users following the caller.
// @Summary List users following me
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.FollowView
// @Failure 401 {object} models.ErrorResponse
// @Router /accounts/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	edges, err := s.follows.Followers(c.UserContext(), currentUserID(c), parsePagination(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(edges)
}

// GetFollowings handles GET /api/v1/accounts/followings: the users the caller follows.
// @Summary List users I follow
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.FollowView
// @Failure 401 {object} models.ErrorResponse
// @Router /accounts/followings [get]
func (s *Server) GetFollowings(c *fiber.Ctx) error {
	edges, err := s.follows.Followings(c.UserContext(), currentUserID(c), parsePagination(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(edges)
}
