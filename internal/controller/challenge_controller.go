package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/service"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
	ScheduleService  *service.ScheduleService
}

func NewChallengeController(challengeService *service.ChallengeService, scheduleService *service.ScheduleService) *ChallengeController {
	return &ChallengeController{
		ChallengeService: challengeService,
		ScheduleService:  scheduleService,
	}
}

type ChallengeRequest struct {
	Name      string `json:"name" binding:"required"`
	OpenDate  string `json:"openDate" binding:"required"`  // 2006-01-02
	CloseDate string `json:"closeDate" binding:"required"` // 2006-01-02
}

type AttachLectureRequest struct {
	LectureID uint `json:"lectureId" binding:"required"`
	Sequence  int  `json:"sequence" binding:"required,min=1"`
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// CreateChallenge godoc
// @Summary Create a challenge
// @Tags challenges
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ChallengeRequest true "challenge"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/admin/challenges [post]
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	var req ChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	openDate, err := parseDate(req.OpenDate)
	if err != nil {
		util.BadRequest(ctx, "invalid openDate")
		return
	}
	closeDate, err := parseDate(req.CloseDate)
	if err != nil {
		util.BadRequest(ctx, "invalid closeDate")
		return
	}

	challenge, err := c.ChallengeService.Create(req.Name, openDate, closeDate)
	if err != nil {
		if errors.Is(err, util.ErrChallengeDatesInvalid) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"challenge": challenge})
}

// UpdateChallenge godoc
// @Summary Edit a challenge; moving the open date recomputes every slot
// @Tags challenges
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Param request body ChallengeRequest true "challenge"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "partial schedule update"
// @Router /api/admin/challenges/{id} [put]
func (c *ChallengeController) UpdateChallenge(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req ChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	openDate, err := parseDate(req.OpenDate)
	if err != nil {
		util.BadRequest(ctx, "invalid openDate")
		return
	}
	closeDate, err := parseDate(req.CloseDate)
	if err != nil {
		util.BadRequest(ctx, "invalid closeDate")
		return
	}

	challenge, err := c.ChallengeService.Update(id, req.Name, openDate, closeDate)
	if err != nil {
		var partial *util.PartialScheduleUpdateError
		switch {
		case errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrChallengeDatesInvalid):
			util.BadRequest(ctx, err.Error())
		case errors.As(err, &partial):
			// Surface which slots were updated so the admin can retry.
			ctx.JSON(http.StatusConflict, util.Response{
				Code:    http.StatusConflict,
				Message: partial.Error(),
				Data:    gin.H{"updatedSlotIds": partial.UpdatedSlotIDs},
			})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"challenge": challenge})
}

// DeleteChallenge godoc
// @Summary Delete a challenge and its schedule slots
// @Tags challenges
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id} [delete]
func (c *ChallengeController) DeleteChallenge(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if err := c.ChallengeService.Delete(id); err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListChallenges godoc
// @Summary List challenges
// @Tags challenges
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/challenges [get]
func (c *ChallengeController) ListChallenges(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	challenges, total, err := c.ChallengeService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: challenges, Total: total, Page: page, Limit: limit})
}

// GetChallenge godoc
// @Summary Challenge detail with per-slot open/deadline state
// @Tags challenges
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Success 200 {object} util.Response
// @Router /api/challenges/{id} [get]
func (c *ChallengeController) GetChallenge(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.ChallengeService.Detail(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrClockUnavailable):
			util.Error(ctx, http.StatusServiceUnavailable, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// AttachLecture godoc
// @Summary Attach a lecture to a challenge at a sequence position
// @Tags challenges
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Param request body AttachLectureRequest true "attachment"
// @Success 201 {object} util.Response
// @Router /api/admin/challenges/{id}/lectures [post]
func (c *ChallengeController) AttachLecture(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req AttachLectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	slot, err := c.ScheduleService.AttachLecture(id, req.LectureID, req.Sequence)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound), errors.Is(err, util.ErrLectureNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSequenceInvalid):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, gin.H{"slot": slot})
}

// DetachSlot godoc
// @Summary Remove a schedule slot from its challenge
// @Tags challenges
// @Security ApiKeyAuth
// @Param slotId path int true "slot id"
// @Success 200 {object} util.Response
// @Router /api/admin/slots/{slotId} [delete]
func (c *ChallengeController) DetachSlot(ctx *gin.Context) {
	slotID, ok := paramID(ctx, "slotId")
	if !ok {
		return
	}

	if err := c.ScheduleService.DetachSlot(slotID); err != nil {
		if errors.Is(err, util.ErrSlotNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetSlot godoc
// @Summary Slot detail with lecture and assignment, gated on open time
// @Tags challenges
// @Produce json
// @Security ApiKeyAuth
// @Param slotId path int true "slot id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "slot not open yet"
// @Router /api/slots/{slotId} [get]
func (c *ChallengeController) GetSlot(ctx *gin.Context) {
	slotID, ok := paramID(ctx, "slotId")
	if !ok {
		return
	}

	detail, err := c.ChallengeService.Slot(ctx.Request.Context(), slotID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSlotNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSlotLocked):
			util.Error(ctx, http.StatusForbidden, err.Error())
		case errors.Is(err, util.ErrClockUnavailable):
			util.Error(ctx, http.StatusServiceUnavailable, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// EnrollLearner godoc
// @Summary Enroll a learner into a challenge
// @Tags challenges
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Success 201 {object} util.Response
// @Router /api/challenges/{id}/enroll [post]
func (c *ChallengeController) EnrollLearner(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollment, err := c.ChallengeService.Enroll(ctx.Request.Context(), user.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrClockUnavailable):
			util.Error(ctx, http.StatusServiceUnavailable, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, gin.H{"enrollment": enrollment})
}

type AdminEnrollRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// AdminEnroll godoc
// @Summary Enroll a specific learner into a challenge
// @Tags challenges
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Param request body AdminEnrollRequest true "learner"
// @Success 201 {object} util.Response
// @Router /api/admin/challenges/{id}/enrollments [post]
func (c *ChallengeController) AdminEnroll(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req AdminEnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.ChallengeService.Enroll(ctx.Request.Context(), req.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrClockUnavailable):
			util.Error(ctx, http.StatusServiceUnavailable, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, gin.H{"enrollment": enrollment})
}
