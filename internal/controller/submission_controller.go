package controller

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"
	"github.com/demodev-lab/demo-funnel-sub000/internal/service"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

func imageFromForm(header *multipart.FileHeader) (*service.ImageUpload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.ImageUpload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, func() { file.Close() }, nil
}

func respondSubmissionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSlotNotFound), errors.Is(err, util.ErrSubmissionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrLinkRequired):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrDeadlineExceeded):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrClockUnavailable), errors.Is(err, util.ErrStorageFailure):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// Submit godoc
// @Summary Submit an assignment for a schedule slot
// @Description Rejected once the slot's due_at has passed on the server clock.
// @Tags submissions
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param slotId path int true "slot id"
// @Param link formData string true "submission link"
// @Param comment formData string false "comment"
// @Param image formData file false "optional image"
// @Success 201 {object} util.Response
// @Failure 403 {object} util.Response "deadline exceeded"
// @Router /api/slots/{slotId}/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	slotID, ok := paramID(ctx, "slotId")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	in := service.SubmitInput{
		Link:    ctx.PostForm("link"),
		Comment: ctx.PostForm("comment"),
	}
	if header, err := ctx.FormFile("image"); err == nil {
		image, closeFn, err := imageFromForm(header)
		if err != nil {
			util.BadRequest(ctx, "invalid image")
			return
		}
		defer closeFn()
		in.Image = image
	}

	submission, err := c.SubmissionService.Submit(ctx.Request.Context(), user.UserID, slotID, in)
	if err != nil {
		respondSubmissionError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"submission": submission})
}

// Amend godoc
// @Summary Edit an existing submission before the deadline
// @Tags submissions
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "submission id"
// @Param link formData string true "submission link"
// @Param comment formData string false "comment"
// @Param image formData file false "replacement image"
// @Param removeImage formData bool false "clear the stored image"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "deadline exceeded"
// @Router /api/submissions/{id} [put]
func (c *SubmissionController) Amend(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	in := service.AmendInput{
		Link:        ctx.PostForm("link"),
		Comment:     ctx.PostForm("comment"),
		RemoveImage: ctx.PostForm("removeImage") == "true",
	}
	if header, err := ctx.FormFile("image"); err == nil {
		image, closeFn, err := imageFromForm(header)
		if err != nil {
			util.BadRequest(ctx, "invalid image")
			return
		}
		defer closeFn()
		in.Image = image
	}

	submission, err := c.SubmissionService.Amend(ctx.Request.Context(), user.UserID, id, in)
	if err != nil {
		respondSubmissionError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"submission": submission})
}

// GetMine godoc
// @Summary Current learner's submission for a slot
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Param slotId path int true "slot id"
// @Success 200 {object} util.Response
// @Router /api/slots/{slotId}/submissions/me [get]
func (c *SubmissionController) GetMine(ctx *gin.Context) {
	slotID, ok := paramID(ctx, "slotId")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submission, err := c.SubmissionService.GetForUser(ctx.Request.Context(), user.UserID, slotID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"submission": submission})
}

// Delete godoc
// @Summary Delete a submission
// @Tags submissions
// @Security ApiKeyAuth
// @Param id path int true "submission id"
// @Success 200 {object} util.Response
// @Router /api/submissions/{id} [delete]
func (c *SubmissionController) Delete(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	isAdmin := user.Role == model.Admin
	if err := c.SubmissionService.Delete(ctx.Request.Context(), user.UserID, id, isAdmin); err != nil {
		respondSubmissionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
