package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const postImagesField = "images"

func (h *Handler) initPostsRoutes(api *gin.RouterGroup) {
	posts := api.Group("/posts")
	{
		posts.GET("", h.browsePosts)
		posts.GET("/:id", h.optionalIdentityMiddleware, h.getPostByID)
		posts.POST("", h.userIdentityMiddleware, h.createPost)
		posts.PATCH("/:id", h.userIdentityMiddleware, h.editPost)
		posts.DELETE("/:id", h.userIdentityMiddleware, h.deletePost)
		posts.POST("/:id/images", h.userIdentityMiddleware, h.attachPostImages)
	}
}

type postsListResponse = listResponse[domain.Post]

func splitQuery(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func floatQuery(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

func postFilters(c *gin.Context) *repository.PostFilters {
	filters := &repository.PostFilters{
		Categories: splitQuery(c.Query("categories")),
		Districts:  splitQuery(c.Query("districts")),
		ForWhom:    splitQuery(c.Query("for_whom")),
		MinRent:    floatQuery(c, "min_rent"),
		MaxRent:    floatQuery(c, "max_rent"),
		SortBy:     c.Query("sort_by"),
		Order:      c.Query("order"),
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filters.Search = &search
	}

	return filters
}

// @Summary Browse Posts
// @Tags Posts
// @Description Approved listings with filters and pagination
// @ModuleID browsePosts
// @Produce  json
// @Param page query int false "page, starts at 1"
// @Param limit query int false "page size, default 12, max 100"
// @Param categories query string false "comma separated categories"
// @Param districts query string false "comma separated districts"
// @Param for_whom query string false "comma separated audiences"
// @Param min_rent query number false "minimum rent"
// @Param max_rent query number false "maximum rent"
// @Param search query string false "search in title and location"
// @Param sort_by query string false "created_at or rent"
// @Param order query string false "asc or desc"
// @Success 200 {object} postsListResponse
// @Failure 503 {object} ErrorStruct
// @Router /posts [get]
func (h *Handler) browsePosts(c *gin.Context) {
	page, limit := pageParams(c)

	posts, total, err := h.services.Posts.Browse(c.Request.Context(), page, limit, postFilters(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, postsListResponse{Items: posts, Total: total, Page: page, Limit: limit})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, InvalidRequestCode)
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Get Post
// @Tags Posts
// @Description Approved posts are public. Pending and declined posts are shown to their owner and admins only.
// @ModuleID getPostByID
// @Produce  json
// @Param id path string true "post id"
// @Success 200 {object} domain.Post
// @Failure 404 {object} ErrorStruct
// @Router /posts/{id} [get]
func (h *Handler) getPostByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	viewer, _ := getSession(c)

	post, err := h.services.Posts.GetByID(c.Request.Context(), viewer, id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// @Summary Create Post
// @Tags Posts
// @Description The post starts pending review. Owner fields come from the session.
// @ModuleID createPost
// @Accept  json
// @Produce  json
// @Param input body domain.PostContent true "listing"
// @Success 201 {object} domain.Post
// @Failure 400 {object} ValidationErrorStruct
// @Failure 403 {object} ErrorStruct
// @Security UserAuth
// @Router /posts [post]
func (h *Handler) createPost(c *gin.Context) {
	var content domain.PostContent
	if err := c.ShouldBindJSON(&content); err != nil {
		bindErrorResponse(c, err)
		return
	}

	post, err := h.services.Posts.Create(c.Request.Context(), mustSession(c), content)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// @Summary Edit Post
// @Tags Posts
// @Description Approved and declined posts go back to pending review
// @ModuleID editPost
// @Accept  json
// @Produce  json
// @Param id path string true "post id"
// @Param input body domain.PostUpdate true "changed fields"
// @Success 200 {object} domain.Post
// @Failure 400 {object} ValidationErrorStruct
// @Failure 403 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /posts/{id} [patch]
func (h *Handler) editPost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var update domain.PostUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		bindErrorResponse(c, err)
		return
	}

	post, err := h.services.Posts.Edit(c.Request.Context(), mustSession(c), id, update)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// @Summary Delete Post
// @Tags Posts
// @Description Deletes the post and its images. Image cleanup failures answer 207 with the report.
// @ModuleID deletePost
// @Produce  json
// @Param id path string true "post id"
// @Success 200 {object} domain.PostDeletionReport
// @Success 207 {object} ErrorStruct
// @Failure 403 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /posts/{id} [delete]
func (h *Handler) deletePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.services.Posts.Delete(c.Request.Context(), mustSession(c), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// @Summary Attach Post Images
// @Tags Posts
// @Description Up to 5 jpeg, png or webp images per post, 3 MB each. The batch is accepted or rejected whole.
// @ModuleID attachPostImages
// @Accept  mpfd
// @Produce  json
// @Param id path string true "post id"
// @Param images formData file true "image files"
// @Success 200 {object} domain.Post
// @Failure 400 {object} ErrorStruct
// @Failure 403 {object} ErrorStruct
// @Security UserAuth
// @Router /posts/{id}/images [post]
func (h *Handler) attachPostImages(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	images, release, err := imageUploads(c, postImagesField)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	defer release()

	post, err := h.services.Posts.AttachImages(c.Request.Context(), mustSession(c), id, images)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}
