package routes

import (
	"github.com/anvilworks/cms-api/controllers"
	"github.com/anvilworks/cms-api/middleware"
	"github.com/gin-gonic/gin"
)

func SetupCommentRoutes(rg *gin.RouterGroup, cc *controllers.CommentController) {
	// Guest-capable endpoints resolve identity when a token is present.
	public := rg.Group("")
	public.Use(middleware.OptionalAuth())
	{
		public.GET("/blog/:slug/comments", cc.ListComments)
		public.POST("/blog/:slug/comments", cc.CreateComment)
		public.GET("/comments/:id", cc.GetComment)
		public.POST("/comments/:id/vote", cc.Vote)
		public.DELETE("/comments/:id/vote", cc.Unvote)
		public.POST("/comments/:id/report", cc.Report)
	}

	authed := rg.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.PUT("/comments/:id", cc.UpdateComment)
		authed.DELETE("/comments/:id", cc.DeleteComment)
	}

	moderator := rg.Group("")
	moderator.Use(middleware.AuthRequired(), middleware.ModeratorRequired())
	{
		moderator.POST("/comments/:id/pin", cc.Pin)
		moderator.DELETE("/comments/:id/pin", cc.Unpin)
	}
}
