package main

import (
	"log"
	"os"

	"github.com/anvilworks/cms-api/config"
	"github.com/anvilworks/cms-api/controllers"
	"github.com/anvilworks/cms-api/repository"
	"github.com/anvilworks/cms-api/routes"
	"github.com/anvilworks/cms-api/services"
	"github.com/anvilworks/cms-api/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	// Set up logging to stdout
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	db, err := config.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	comments := repository.NewCommentRepository(db)
	posts := repository.NewPostRepository(db)
	reports := repository.NewReportRepository(db)
	users := repository.NewUserRepository(db)
	notifications := repository.NewNotificationRepository(db)

	dispatcher := services.NewNotificationDispatcher(cfg.Dispatcher, users, notifications)

	analyzer := services.NewHeuristicAnalyzer(cfg.Moderation, nil)
	commentService := services.NewCommentService(comments, posts, analyzer, dispatcher, cfg.Moderation)
	votingLedger := services.NewVotingLedger(comments)
	reportRegistry := services.NewReportRegistry(reports, comments, commentService, dispatcher)

	threadCache, err := utils.NewCache(cfg.ThreadCacheSize, cfg.ThreadCacheTTL)
	if err != nil {
		log.Fatal("Failed to create thread cache:", err)
	}
	commentController := controllers.NewCommentController(commentService, votingLedger, reportRegistry, threadCache)
	adminController := controllers.NewAdminController(commentService, reportRegistry)

	r := gin.Default()
	r.Use(gin.LoggerWithWriter(os.Stdout))

	routes.SetupRoutes(r, commentController, adminController)

	log.Printf("Starting server on port %s", cfg.Port)
	r.Run(":" + cfg.Port)
}
