package v1

import (
	"net/http"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	profileImageField = "image"
	idDocumentField   = "document"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users", h.userIdentityMiddleware)
	{
		users.GET("/me", h.getProfile)
		users.PATCH("/me", h.updateProfile)
		users.POST("/me/profile-image", h.uploadProfileImage)
		users.POST("/me/id-documents", h.uploadIDDocument)
		users.GET("/me/posts", h.listMyPosts)
	}
}

// @Summary Get Profile
// @Tags Users
// @ModuleID getProfile
// @Produce  json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me [get]
func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.services.Users.GetProfile(c.Request.Context(), mustSession(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Update Profile
// @Tags Users
// @Description Only names can be changed here, the role is admin managed
// @ModuleID updateProfile
// @Accept  json
// @Produce  json
// @Param input body domain.ProfileUpdate true "names"
// @Success 200 {object} domain.User
// @Failure 400 {object} ValidationErrorStruct
// @Security UserAuth
// @Router /users/me [patch]
func (h *Handler) updateProfile(c *gin.Context) {
	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		bindErrorResponse(c, err)
		return
	}

	user, err := h.services.Users.UpdateProfile(c.Request.Context(), mustSession(c), update)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) singleUpload(c *gin.Context, field string,
	upload func(c *gin.Context, image service.ImageUpload) (*domain.User, error),
) {
	images, release, err := imageUploads(c, field)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	defer release()

	if len(images) != 1 {
		serviceErrorResponse(c, domain.NewValidationError("exactly one image expected"))
		return
	}

	user, err := upload(c, images[0])
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Upload Profile Image
// @Tags Users
// @Description Replaces the current profile image
// @ModuleID uploadProfileImage
// @Accept  mpfd
// @Produce  json
// @Param image formData file true "jpeg, png or webp up to 3 MB"
// @Success 200 {object} domain.User
// @Failure 400 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me/profile-image [post]
func (h *Handler) uploadProfileImage(c *gin.Context) {
	h.singleUpload(c, profileImageField, func(c *gin.Context, image service.ImageUpload) (*domain.User, error) {
		return h.services.Users.UploadProfileImage(c.Request.Context(), mustSession(c), image)
	})
}

// @Summary Upload ID Document
// @Tags Users
// @ModuleID uploadIDDocument
// @Accept  mpfd
// @Produce  json
// @Param document formData file true "jpeg, png or webp up to 3 MB"
// @Success 200 {object} domain.User
// @Failure 400 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me/id-documents [post]
func (h *Handler) uploadIDDocument(c *gin.Context) {
	h.singleUpload(c, idDocumentField, func(c *gin.Context, image service.ImageUpload) (*domain.User, error) {
		return h.services.Users.UploadIDDocument(c.Request.Context(), mustSession(c), image)
	})
}

// @Summary My Posts
// @Tags Users
// @Description Every post of the caller whatever its status
// @ModuleID listMyPosts
// @Produce  json
// @Success 200 {array} domain.Post
// @Security UserAuth
// @Router /users/me/posts [get]
func (h *Handler) listMyPosts(c *gin.Context) {
	posts, err := h.services.Posts.ListMine(c.Request.Context(), mustSession(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}
