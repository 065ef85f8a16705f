package v1

import (
	"net/http"
	"strings"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) initAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin", h.userIdentityMiddleware, h.adminMiddleware)
	{
		posts := admin.Group("/posts")
		posts.GET("", h.listPostsByStatus)
		posts.GET("/review-queue", h.reviewQueue)
		posts.GET("/stats", h.postStats)
		posts.POST("/:id/approve", h.approvePost)
		posts.POST("/:id/decline", h.declinePost)

		users := admin.Group("/users")
		users.GET("", h.listUsers)
		users.GET("/stats", h.userStats)
		users.PATCH("/:id", h.updateUserDetails)
		users.DELETE("/:id", h.deleteUser)

		admin.POST("/verifications/cleanup", h.cleanupVerifications)
	}
}

// @Summary Review Queue
// @Tags Admin
// @Description Pending posts, edited ones included once
// @ModuleID reviewQueue
// @Produce  json
// @Success 200 {array} domain.Post
// @Failure 403 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/posts/review-queue [get]
func (h *Handler) reviewQueue(c *gin.Context) {
	posts, err := h.services.Posts.ReviewQueue(c.Request.Context(), mustSession(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// @Summary Posts By Status
// @Tags Admin
// @ModuleID listPostsByStatus
// @Produce  json
// @Param status query string true "pending, approved, declined or active"
// @Success 200 {array} domain.Post
// @Failure 400 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/posts [get]
func (h *Handler) listPostsByStatus(c *gin.Context) {
	status := domain.PostStatus(c.Query("status"))

	posts, err := h.services.Posts.ListByStatus(c.Request.Context(), mustSession(c), status)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// @Summary Approve Post
// @Tags Admin
// @ModuleID approvePost
// @Produce  json
// @Param id path string true "post id"
// @Success 200 {object} domain.Post
// @Failure 400 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/posts/{id}/approve [post]
func (h *Handler) approvePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	post, err := h.services.Posts.Approve(c.Request.Context(), mustSession(c), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

type declineRequest struct {
	Reason string `json:"reason"`
}

// @Summary Decline Post
// @Tags Admin
// @ModuleID declinePost
// @Accept  json
// @Produce  json
// @Param id path string true "post id"
// @Param input body declineRequest true "reason shown to the owner"
// @Success 200 {object} domain.Post
// @Failure 400 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/posts/{id}/decline [post]
func (h *Handler) declinePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req declineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	post, err := h.services.Posts.Decline(c.Request.Context(), mustSession(c), id, req.Reason)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// @Summary Post Stats
// @Tags Admin
// @ModuleID postStats
// @Produce  json
// @Success 200 {object} domain.PostStats
// @Security AdminAuth
// @Router /admin/posts/stats [get]
func (h *Handler) postStats(c *gin.Context) {
	stats, err := h.services.Posts.Stats(c.Request.Context(), mustSession(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

type usersListResponse = listResponse[domain.User]

// @Summary List Users
// @Tags Admin
// @ModuleID listUsers
// @Produce  json
// @Param page query int false "page, starts at 1"
// @Param limit query int false "page size, default 12, max 100"
// @Param role query string false "boarding_finder, boarding_owner or admin"
// @Param search query string false "search in email and name"
// @Success 200 {object} usersListResponse
// @Security AdminAuth
// @Router /admin/users [get]
func (h *Handler) listUsers(c *gin.Context) {
	page, limit := pageParams(c)

	filters := &repository.UserFilters{}
	if role := c.Query("role"); role != "" {
		r := domain.Role(role)
		filters.Role = &r
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filters.Search = &search
	}

	users, total, err := h.services.Users.List(c.Request.Context(), mustSession(c), page, limit, filters)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, usersListResponse{Items: users, Total: total, Page: page, Limit: limit})
}

// @Summary User Stats
// @Tags Admin
// @ModuleID userStats
// @Produce  json
// @Success 200 {object} domain.UserStats
// @Security AdminAuth
// @Router /admin/users/stats [get]
func (h *Handler) userStats(c *gin.Context) {
	stats, err := h.services.Users.Stats(c.Request.Context(), mustSession(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary Update User
// @Tags Admin
// @ModuleID updateUserDetails
// @Accept  json
// @Produce  json
// @Param id path string true "user id"
// @Param input body domain.AdminUserUpdate true "changed fields"
// @Success 200 {object} domain.User
// @Failure 400 {object} ValidationErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users/{id} [patch]
func (h *Handler) updateUserDetails(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var update domain.AdminUserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		bindErrorResponse(c, err)
		return
	}

	user, err := h.services.Users.UpdateDetails(c.Request.Context(), mustSession(c), id, update)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Delete User
// @Tags Admin
// @Description Removes the account with its images and posts. Cleanup failures answer 207 with the report.
// @ModuleID deleteUser
// @Produce  json
// @Param id path string true "user id"
// @Success 200 {object} domain.UserDeletionReport
// @Success 207 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 503 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.services.Users.Delete(c.Request.Context(), mustSession(c), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

type cleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// @Summary Cleanup Verification Codes
// @Tags Admin
// @Description Deletes expired verification codes now. With async=true the cleanup is queued instead.
// @ModuleID cleanupVerifications
// @Produce  json
// @Param async query bool false "queue the cleanup"
// @Success 200 {object} cleanupResponse
// @Success 202 {object} messageResponse
// @Security AdminAuth
// @Router /admin/verifications/cleanup [post]
func (h *Handler) cleanupVerifications(c *gin.Context) {
	if c.Query("async") == "true" && h.cleanups != nil {
		if err := h.cleanups.EnqueueCleanupVerifications(c.Request.Context()); err != nil {
			logger.Error("enqueue verification cleanup failed", zap.Error(err))
			errorResponse(c, http.StatusServiceUnavailable, DependencyFailureCode)
			return
		}
		c.JSON(http.StatusAccepted, messageResponse{Message: "cleanup queued"})
		return
	}

	deleted, err := h.services.Verifications.CleanupExpired(c.Request.Context())
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, cleanupResponse{Deleted: deleted})
}
