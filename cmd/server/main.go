package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/social-api/configs"
	"github.com/maheshrc27/social-api/internal/api"
	job "github.com/maheshrc27/social-api/internal/jobs"
	"github.com/maheshrc27/social-api/internal/queue"
	"github.com/maheshrc27/social-api/internal/repository"
	"github.com/maheshrc27/social-api/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}
	if err := repository.ApplySchema(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	r2Service, err := service.NewR2Service(ctx, cfg.R2)
	if err != nil {
		log.Fatalf("Failed to configure object storage: %v", err)
	}
	cleaner := queue.NewEnqueuer(client)

	accountRepo := repository.NewAccountRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	unsplashRepo := repository.NewUnsplashRepository(db)

	authService := service.NewAuthService(*cfg, accountRepo, r2Service, cleaner)
	graphService := service.NewGraphService(accountRepo, followRepo)
	feedService := service.NewFeedService(accountRepo, followRepo, postRepo, commentRepo, graphService)
	userService := service.NewUserService(accountRepo, followRepo, postRepo, feedService, r2Service, cleaner)
	postService := service.NewPostService(postRepo, r2Service, cleaner)
	commentService := service.NewCommentService(accountRepo, postRepo, commentRepo)
	unsplashService := service.NewUnsplashService(accountRepo, unsplashRepo)

	app := api.NewApp(*cfg, api.Services{
		Auth:     authService,
		Users:    userService,
		Graph:    graphService,
		Feed:     feedService,
		Posts:    postService,
		Comments: commentService,
		Unsplash: unsplashService,
	})

	// cron jobs
	sessionSweepJob := job.NewSessionSweepJob(accountRepo)

	c := cron.New()
	if err := c.AddFunc(cfg.SessionSweepSchedule, sessionSweepJob.Sweep); err != nil {
		log.Fatalf("Invalid session sweep schedule %q: %v", cfg.SessionSweepSchedule, err)
	}
	c.Start()
	defer c.Stop()

	//queue
	queueW := queue.NewQueue(r2Service, cfg.WorkerConcurrency)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
	})

	log.Println("Starting the Asynq server...")
	if err := server.Start(queueW.Mux()); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, server)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}
	server.Shutdown()

	log.Println("Server shutdown complete.")
}
