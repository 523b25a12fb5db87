package server

import (
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/v1/comments?post=
// @Summary List comments
// @Tags comments
// @Produce json
// @Param post query int false "Post ID"
// @Success 200 {array} service.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Router /comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := queryID(c, "post")
	if err != nil {
		return nil
	}

	comments, err := s.comments.ListComments(c.UserContext(), postID, parsePagination(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// GetComment handles GET /api/v1/comments/:id
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} service.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.comments.GetComment(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/v1/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post=int,body=string} true "Comment"
// @Success 201 {object} service.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Post uint   `json:"post" form:"post"`
		Body string `json:"body" form:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.comments.CreateComment(c.UserContext(), service.CreateCommentInput{
		OwnerID: currentUserID(c),
		PostID:  req.Post,
		Body:    req.Body,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/v1/comments/:id
// @Summary Delete an own comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.comments.DeleteComment(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
