package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcrew.com/shopcrew/core"
	"shopcrew.com/shopcrew/security"
	"shopcrew.com/shopcrew/web/common"
)

type verifyPinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

// VerifyOwnerPinHandler handles POST /api/shops/:shopId/owner/verify-pin.
// Success returns a 30-minute owner session token; failures return the
// remaining attempts or the lockout window.
func (h *Handler) VerifyOwnerPinHandler(c *gin.Context) {
	shopID, err := shopIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	var body verifyPinRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	result, err := h.Verifier.VerifyOwnerPIN(c.Request.Context(), shopID, body.Pin)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, common.NewErrorResponse("temporarily unavailable, please retry"))
		return
	}

	switch result.Outcome {
	case security.VerifySuccess:
		c.JSON(http.StatusOK, common.NewSuccessResponse(result))
	case security.VerifyLockedOut:
		c.JSON(http.StatusTooManyRequests, common.NewErrorResponse(result.Message))
	default:
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse(result.Message))
	}
}

type setPinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

// SetOwnerPinHandler handles PUT /api/shops/:shopId/owner/pin behind the
// owner session middleware. Weak PINs are rejected with the specific
// weakness category.
func (h *Handler) SetOwnerPinHandler(c *gin.Context) {
	shopID, err := shopIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	var body setPinRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	hash, err := security.SetOwnerPIN(body.Pin)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	if err := core.UpdateOwnerPinHash(h.DM.DB.WithContext(c.Request.Context()), shopID, hash); err != nil {
		c.JSON(http.StatusServiceUnavailable, common.NewErrorResponse("temporarily unavailable, please retry"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"updated": true}))
}
