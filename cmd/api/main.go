package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/feedback-board/internal/api/http"
	"github.com/spec-kit/feedback-board/internal/api/http/handlers"
	"github.com/spec-kit/feedback-board/internal/auth"
	"github.com/spec-kit/feedback-board/internal/config"
	"github.com/spec-kit/feedback-board/internal/events"
	"github.com/spec-kit/feedback-board/internal/observability"
	"github.com/spec-kit/feedback-board/internal/persistence"
	"github.com/spec-kit/feedback-board/internal/repository"
	"github.com/spec-kit/feedback-board/internal/service"
	"github.com/spec-kit/feedback-board/internal/storage"
	"github.com/spec-kit/feedback-board/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	if cfg.Mongo.EnsureIndexes {
		if err := persistence.EnsureIndexes(ctx, mongo, logger); err != nil {
			logger.Fatal("failed to ensure indexes", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(mongo)
	categoryRepo := repository.NewCategoryRepository(mongo)
	feedbackRepo := repository.NewFeedbackRepository(mongo)
	commentRepo := repository.NewCommentRepository(mongo)

	blocklist := auth.NewTokenBlocklist(redis)
	images := storage.NewCloudinaryClient(cfg.Cloudinary)
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(cfg.Auth, userRepo, blocklist)
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	categoryService := service.NewCategoryService(categoryRepo, redis, logger)
	feedbackService := service.NewFeedbackService(service.FeedbackDependencies{
		FeedbackRepo: feedbackRepo,
		CommentRepo:  commentRepo,
		CategoryRepo: categoryRepo,
		UserRepo:     userRepo,
		Images:       images,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo:  commentRepo,
		FeedbackRepo: feedbackRepo,
		CategoryRepo: categoryRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, blocklist)
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 10 << 20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(mongo, redis),
		Users:          handlers.NewUsersHandler(authService, userService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService, commentService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Uploads:        handlers.NewUploadsHandler(images),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
