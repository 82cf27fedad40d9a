package routes

import (
	"github.com/anvilworks/cms-api/controllers"
	"github.com/anvilworks/cms-api/middleware"
	"github.com/gin-gonic/gin"
)

func SetupAdminRoutes(rg *gin.RouterGroup, ac *controllers.AdminController) {
	admin := rg.Group("/admin/comments")
	admin.Use(middleware.AuthRequired(), middleware.ModeratorRequired())
	{
		admin.GET("/moderation/queue", ac.ModerationQueue)

		admin.POST("/:id/approve", ac.Approve)
		admin.POST("/:id/reject", ac.Reject)
		admin.POST("/:id/spam", ac.Spam)

		admin.POST("/bulk-approve", ac.BulkApprove)
		admin.POST("/bulk-reject", ac.BulkReject)
		admin.POST("/bulk-spam", ac.BulkSpam)

		admin.GET("/reports", ac.ListReports)
		admin.POST("/reports/:id/resolve", ac.ResolveReport)
		admin.POST("/reports/:id/dismiss", ac.DismissReport)

		admin.POST("/reanalyze", ac.Reanalyze)
	}
}
