package controller

import (
	"strconv"

	"github.com/demodev-lab/demo-funnel-sub000/internal/service"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type CompletionController struct {
	CompletionService *service.CompletionService
}

func NewCompletionController(completionService *service.CompletionService) *CompletionController {
	return &CompletionController{CompletionService: completionService}
}

// GetMatrix godoc
// @Summary Learner × slot completion matrix for a challenge
// @Description With completedOnly=true only learners who submitted every assignment-bearing slot appear.
// @Tags completion
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Param page query int false "page"
// @Param pageSize query int false "page size"
// @Param completedOnly query bool false "filter to fully completed learners"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id}/completion [get]
func (c *CompletionController) GetMatrix(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))
	completedOnly := ctx.Query("completedOnly") == "true"

	matrix, err := c.CompletionService.BuildMatrix(ctx.Request.Context(), id, page, pageSize, completedOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, matrix)
}

// GetRates godoc
// @Summary Per-slot submission rates for a challenge
// @Tags completion
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id}/completion/rates [get]
func (c *CompletionController) GetRates(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	rates, err := c.CompletionService.SubmissionRateBySlot(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rates": rates})
}
