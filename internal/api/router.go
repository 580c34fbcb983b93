// Package api assembles the fiber application serving the social API.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/maheshrc27/social-api/configs"
	"github.com/maheshrc27/social-api/internal/api/handlers"
	"github.com/maheshrc27/social-api/internal/api/middleware"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/service"
)

type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Graph    service.GraphService
	Feed     service.FeedService
	Posts    service.PostService
	Comments service.CommentService
	Unsplash service.UnsplashService
}

func NewApp(cfg config.Config, s Services) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CorsOrigin,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(s.Auth)
	requireAuth := authMiddleware.AuthMiddleware()

	v1 := app.Group("/api/v1")

	auth := handlers.NewAuthHandler(s.Auth)
	v1.Post("/auth/register", auth.Register)
	v1.Post("/auth/login", auth.Login)
	v1.Post("/auth/refresh", auth.Refresh)
	v1.Post("/auth/logout", requireAuth, auth.Logout)

	user := handlers.NewUserHandler(s.Users, s.Graph)
	v1.Get("/user", requireAuth, middleware.RequireRole(models.RoleAdmin), user.ListUsers)
	v1.Get("/user/current", requireAuth, user.Current)
	v1.Get("/user/followers/:username", user.Followers)
	v1.Get("/user/following/:username", user.Following)
	v1.Post("/user/follow/:username", requireAuth, user.Follow)
	v1.Delete("/user/unfollow/:username", requireAuth, user.Unfollow)
	v1.Put("/user/update", requireAuth, user.Update)
	v1.Get("/user/:username", user.Profile)
	v1.Delete("/user/:username", requireAuth, user.Remove)

	post := handlers.NewPostHandler(s.Posts, s.Feed)
	comment := handlers.NewCommentHandler(s.Comments)
	v1.Post("/post", requireAuth, post.CreatePost)
	v1.Get("/post/public", post.PublicPosts)
	v1.Get("/post/feed", requireAuth, post.Feed)
	v1.Get("/post/:username", requireAuth, post.ProfilePosts)
	v1.Put("/post/:postId/caption", requireAuth, post.UpdateCaption)
	v1.Post("/post/:postId/like", requireAuth, post.Like)
	v1.Delete("/post/:postId/unlike", requireAuth, post.Unlike)
	v1.Post("/post/:postId/comment", requireAuth, comment.Create)
	v1.Delete("/post/:postId", requireAuth, post.RemovePost)

	v1.Post("/comment/:postId", requireAuth, comment.Create)
	v1.Get("/comment/:postId", requireAuth, comment.List)
	v1.Put("/comment/:commentId", requireAuth, comment.Update)
	v1.Delete("/comment/:commentId", requireAuth, comment.Remove)

	unsplash := handlers.NewUnsplashHandler(s.Unsplash)
	v1.Post("/unsplash", requireAuth, unsplash.Create)
	v1.Get("/unsplash/mine/:unsplashId", requireAuth, unsplash.Mine)
	v1.Get("/unsplash/all/:unsplashId", requireAuth, unsplash.All)
	v1.Get("/unsplash/user/:userId", requireAuth, unsplash.ByUser)

	return app
}
