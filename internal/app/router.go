package app

import (
	"github.com/demodev-lab/demo-funnel-sub000/docs"
	"github.com/demodev-lab/demo-funnel-sub000/internal/config"
	"github.com/demodev-lab/demo-funnel-sub000/internal/middleware"
	"github.com/demodev-lab/demo-funnel-sub000/internal/model"
	"github.com/demodev-lab/demo-funnel-sub000/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.GET("/challenges", c.challenge.ListChallenges)
		authGroup.GET("/challenges/:id", c.challenge.GetChallenge)
		authGroup.POST("/challenges/:id/enroll", c.challenge.EnrollLearner)

		authGroup.GET("/lectures", c.lecture.ListLectures)

		authGroup.GET("/slots/:slotId", c.challenge.GetSlot)
		authGroup.POST("/slots/:slotId/submissions", c.submission.Submit)
		authGroup.GET("/slots/:slotId/submissions/me", c.submission.GetMine)
		authGroup.PUT("/submissions/:id", c.submission.Amend)
		authGroup.DELETE("/submissions/:id", c.submission.Delete)

		authGroup.GET("/challenges/:id/refund", c.refund.GetEligibility)
		authGroup.POST("/challenges/:id/refund", c.refund.RequestRefund)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/challenges", c.challenge.CreateChallenge)
		admin.PUT("/challenges/:id", c.challenge.UpdateChallenge)
		admin.DELETE("/challenges/:id", c.challenge.DeleteChallenge)

		admin.POST("/challenges/:id/lectures", c.challenge.AttachLecture)
		admin.POST("/challenges/:id/enrollments", c.challenge.AdminEnroll)
		admin.DELETE("/slots/:slotId", c.challenge.DetachSlot)

		admin.POST("/lectures", c.lecture.CreateLecture)
		admin.PUT("/lectures/:id", c.lecture.UpdateLecture)
		admin.DELETE("/lectures/:id", c.lecture.DeleteLecture)
		admin.PUT("/lectures/:id/assignment", c.lecture.SetAssignment)
		admin.DELETE("/lectures/:id/assignment", c.lecture.RemoveAssignment)

		admin.GET("/challenges/:id/completion", c.completion.GetMatrix)
		admin.GET("/challenges/:id/completion/rates", c.completion.GetRates)
		admin.GET("/challenges/:id/refunds", c.refund.ListRequests)
	}
}
