package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initVerificationRoutes(api *gin.RouterGroup) {
	verifications := api.Group("/verifications")
	{
		verifications.POST("/send", h.sendVerificationCode)
		verifications.POST("/verify", h.verifyCode)
		verifications.POST("/resend", h.resendVerificationCode)
		verifications.GET("/status", h.verificationStatus)
	}
}

type sendCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

type sendCodeResponse struct {
	VerificationID uuid.UUID `json:"verification_id"`
}

// @Summary Send Verification Code
// @Tags Verification
// @Description Issues a 6 digit code valid for 10 minutes and mails it
// @ModuleID sendVerificationCode
// @Accept  json
// @Produce  json
// @Param input body sendCodeRequest true "recipient"
// @Success 201 {object} sendCodeResponse
// @Failure 400 {object} ErrorStruct
// @Failure 503 {object} ErrorStruct
// @Router /verifications/send [post]
func (h *Handler) sendVerificationCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	id, err := h.services.Verifications.Issue(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, sendCodeResponse{VerificationID: id})
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type verificationStatusResponse struct {
	Email    string `json:"email,omitempty"`
	Verified bool   `json:"verified"`
}

// @Summary Verify Code
// @Tags Verification
// @ModuleID verifyCode
// @Accept  json
// @Produce  json
// @Param input body verifyCodeRequest true "email and code"
// @Success 200 {object} verificationStatusResponse
// @Failure 400 {object} ErrorStruct
// @Failure 503 {object} ErrorStruct
// @Router /verifications/verify [post]
func (h *Handler) verifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	if err := h.services.Verifications.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, verificationStatusResponse{Verified: true})
}

// @Summary Resend Verification Code
// @Tags Verification
// @Description Invalidates every outstanding code of the email and issues a new one
// @ModuleID resendVerificationCode
// @Accept  json
// @Produce  json
// @Param input body sendCodeRequest true "recipient"
// @Success 201 {object} sendCodeResponse
// @Failure 400 {object} ErrorStruct
// @Failure 503 {object} ErrorStruct
// @Router /verifications/resend [post]
func (h *Handler) resendVerificationCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	id, err := h.services.Verifications.Resend(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, sendCodeResponse{VerificationID: id})
}

// @Summary Verification Status
// @Tags Verification
// @ModuleID verificationStatus
// @Produce  json
// @Param email query string true "email address"
// @Success 200 {object} verificationStatusResponse
// @Failure 400 {object} ErrorStruct
// @Router /verifications/status [get]
func (h *Handler) verificationStatus(c *gin.Context) {
	email := c.Query("email")

	verified, err := h.services.Verifications.IsVerified(c.Request.Context(), email)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, verificationStatusResponse{Email: email, Verified: verified})
}
