package controller

import (
	"errors"
	"strconv"

	"github.com/demodev-lab/demo-funnel-sub000/internal/service"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type LectureController struct {
	LectureService *service.LectureService
}

func NewLectureController(lectureService *service.LectureService) *LectureController {
	return &LectureController{LectureService: lectureService}
}

type LectureRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
}

type AssignmentRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// CreateLecture godoc
// @Summary Create a lecture
// @Tags lectures
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body LectureRequest true "lecture"
// @Success 201 {object} util.Response
// @Router /api/admin/lectures [post]
func (c *LectureController) CreateLecture(ctx *gin.Context) {
	var req LectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lecture, err := c.LectureService.Create(req.Name, req.Description, req.VideoURL)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"lecture": lecture})
}

// UpdateLecture godoc
// @Summary Edit a lecture
// @Tags lectures
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "lecture id"
// @Param request body LectureRequest true "lecture"
// @Success 200 {object} util.Response
// @Router /api/admin/lectures/{id} [put]
func (c *LectureController) UpdateLecture(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req LectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lecture, err := c.LectureService.Update(id, req.Name, req.Description, req.VideoURL)
	if err != nil {
		if errors.Is(err, util.ErrLectureNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"lecture": lecture})
}

// DeleteLecture godoc
// @Summary Delete a lecture, its assignment and its schedule slots
// @Tags lectures
// @Security ApiKeyAuth
// @Param id path int true "lecture id"
// @Success 200 {object} util.Response
// @Router /api/admin/lectures/{id} [delete]
func (c *LectureController) DeleteLecture(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if err := c.LectureService.Delete(id); err != nil {
		if errors.Is(err, util.ErrLectureNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListLectures godoc
// @Summary List lectures
// @Tags lectures
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/lectures [get]
func (c *LectureController) ListLectures(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	lectures, total, err := c.LectureService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: lectures, Total: total, Page: page, Limit: limit})
}

// SetAssignment godoc
// @Summary Create or replace a lecture's assignment
// @Tags lectures
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "lecture id"
// @Param request body AssignmentRequest true "assignment"
// @Success 200 {object} util.Response
// @Router /api/admin/lectures/{id}/assignment [put]
func (c *LectureController) SetAssignment(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.LectureService.SetAssignment(id, req.Title, req.Body)
	if err != nil {
		if errors.Is(err, util.ErrLectureNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"assignment": assignment})
}

// RemoveAssignment godoc
// @Summary Remove a lecture's assignment
// @Tags lectures
// @Security ApiKeyAuth
// @Param id path int true "lecture id"
// @Success 200 {object} util.Response
// @Router /api/admin/lectures/{id}/assignment [delete]
func (c *LectureController) RemoveAssignment(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if err := c.LectureService.RemoveAssignment(id); err != nil {
		if errors.Is(err, util.ErrAssignmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
