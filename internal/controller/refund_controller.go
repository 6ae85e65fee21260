package controller

import (
	"errors"

	"github.com/demodev-lab/demo-funnel-sub000/internal/service"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type RefundController struct {
	RefundService *service.RefundService
}

func NewRefundController(refundService *service.RefundService) *RefundController {
	return &RefundController{RefundService: refundService}
}

// GetEligibility godoc
// @Summary Current learner's refund eligibility for a challenge
// @Tags refunds
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Success 200 {object} util.Response
// @Router /api/challenges/{id}/refund [get]
func (c *RefundController) GetEligibility(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	eligibility, err := c.RefundService.Evaluate(ctx.Request.Context(), user.UserID, id)
	if err != nil {
		if errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, eligibility)
}

// RequestRefund godoc
// @Summary Flag the current learner's enrollment as refund requested
// @Description Requesting again once the flag is set is a no-op.
// @Tags refunds
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Success 200 {object} util.Response
// @Router /api/challenges/{id}/refund [post]
func (c *RefundController) RequestRefund(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.RefundService.RequestRefund(ctx.Request.Context(), user.UserID, id); err != nil {
		if errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListRequests godoc
// @Summary Refund requests for a challenge
// @Tags refunds
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id}/refunds [get]
func (c *RefundController) ListRequests(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	rows, err := c.RefundService.ListRequests(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"requests": rows})
}
