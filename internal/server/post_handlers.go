package server

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"
	"quill/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// postFields holds the writable post fields of a request. Nil pointers mean
// the field was not sent.
type postFields struct {
	title    *string
	body     *string
	category *string
	preview  []byte
	images   [][]byte
}

// readPostFields accepts multipart, urlencoded and JSON bodies. Files are only
// read from multipart bodies.
func (s *Server) readPostFields(c *fiber.Ctx) (*postFields, error) {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, models.NewValidationError("Invalid multipart form")
		}
		return s.fieldsFromMultipart(form)
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		var req postRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
		return req.fields(), nil
	default:
		f := &postFields{}
		args := c.Request().PostArgs()
		for name, dst := range map[string]**string{"title": &f.title, "body": &f.body, "category": &f.category} {
			if args.Has(name) {
				v := string(args.Peek(name))
				*dst = &v
			}
		}
		return f, nil
	}
}

func (s *Server) fieldsFromMultipart(form *multipart.Form) (*postFields, error) {
	f := &postFields{}
	for name, dst := range map[string]**string{"title": &f.title, "body": &f.body, "category": &f.category} {
		if vals, ok := form.Value[name]; ok && len(vals) > 0 {
			v := vals[0]
			*dst = &v
		}
	}

	maxBytes := int64(s.config.MaxUploadBytes())
	if files := form.File["preview"]; len(files) > 0 {
		content, err := storage.ReadFileHeader(files[0], maxBytes)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		f.preview = content
	}
	for _, fh := range form.File["images"] {
		content, err := storage.ReadFileHeader(fh, maxBytes)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		f.images = append(f.images, content)
	}
	return f, nil
}

// postRequest is the JSON body of post writes.
type postRequest struct {
	Title    *string       `json:"title"`
	Body     *string       `json:"body"`
	Category categoryValue `json:"category"`
}

// categoryValue accepts 3, "3" and null. An explicit null reads as "".
type categoryValue struct {
	set bool
	raw string
}

func (v *categoryValue) UnmarshalJSON(data []byte) error {
	v.set = true
	switch trimmed := strings.TrimSpace(string(data)); {
	case trimmed == "null":
		v.raw = ""
	case strings.HasPrefix(trimmed, `"`):
		return json.Unmarshal(data, &v.raw)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		v.raw = n.String()
	}
	return nil
}

func (r postRequest) fields() *postFields {
	f := &postFields{title: r.Title, body: r.Body}
	if r.Category.set {
		raw := r.Category.raw
		f.category = &raw
	}
	return f
}

// parseCategory returns nil for an absent or empty category.
func parseCategory(raw *string) (*uint, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(strings.TrimSpace(*raw), 10, 32)
	if err != nil || id == 0 {
		return nil, models.NewValidationError("Invalid category")
	}
	v := uint(id)
	return &v, nil
}

// ListPosts handles GET /api/v1/posts?search=&category=&owner=
// @Summary List posts
// @Tags posts
// @Produce json
// @Param search query string false "Title or body fragment"
// @Param category query int false "Category ID"
// @Param owner query int false "Owner ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} service.PostListItem
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	categoryID, err := queryID(c, "category")
	if err != nil {
		return nil
	}
	ownerID, err := queryID(c, "owner")
	if err != nil {
		return nil
	}
	viewerID, _ := middleware.UserID(c)

	posts, err := s.posts.ListPosts(c.UserContext(), service.ListPostsInput{
		Search:     strings.TrimSpace(c.Query("search")),
		CategoryID: categoryID,
		OwnerID:    ownerID,
		Page:       parsePagination(c),
		ViewerID:   viewerID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/v1/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.PostDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.posts.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/v1/posts
// @Summary Create a post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param body formData string true "Body"
// @Param category formData int false "Category ID"
// @Param preview formData file false "Preview image"
// @Param images formData file false "Attached images"
// @Success 201 {object} service.PostDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	fields, err := s.readPostFields(c)
	if err != nil {
		return respondError(c, err)
	}
	categoryID, err := parseCategory(fields.category)
	if err != nil {
		return respondError(c, err)
	}

	in := service.CreatePostInput{
		OwnerID:    currentUserID(c),
		CategoryID: categoryID,
		Preview:    fields.preview,
		Images:     fields.images,
	}
	if fields.title != nil {
		in.Title = *fields.title
	}
	if fields.body != nil {
		in.Body = *fields.body
	}

	post, err := s.posts.CreatePost(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PATCH and PUT /api/v1/posts/:id. Only sent fields change;
// an empty category detaches the post from its category.
// @Summary Update an own post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{title=string,body=string,category=int} true "Changed fields"
// @Success 200 {object} service.PostDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	fields, err := s.readPostFields(c)
	if err != nil {
		return respondError(c, err)
	}
	categoryID, err := parseCategory(fields.category)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.posts.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:        currentUserID(c),
		PostID:        id,
		Title:         fields.title,
		Body:          fields.body,
		CategoryID:    categoryID,
		ClearCategory: fields.category != nil && categoryID == nil,
		Preview:       fields.preview,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/v1/posts/:id
// @Summary Delete an own post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.posts.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
