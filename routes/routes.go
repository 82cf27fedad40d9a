package routes

import (
	"net/http"

	"github.com/anvilworks/cms-api/controllers"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, commentController *controllers.CommentController, adminController *controllers.AdminController) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		SetupCommentRoutes(api, commentController)
		SetupAdminRoutes(api, adminController)
	}
}
