package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cognition-berries/pkg/cache"
	"cognition-berries/pkg/config"
	"cognition-berries/pkg/database"
	"cognition-berries/pkg/emailcheck"
	"cognition-berries/pkg/firebase"
	"cognition-berries/pkg/identity"
	"cognition-berries/pkg/jwt"
	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/middleware"
	"cognition-berries/pkg/paystack"
	"cognition-berries/pkg/queue"
	"cognition-berries/pkg/s3"
	"cognition-berries/pkg/storage"
	apiHTTP "cognition-berries/services/api/internal/controller/http"
	"cognition-berries/services/api/internal/repo/persistent"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "cognition-berries/services/api/docs" // Swagger docs
)

const uploadsPath = "/uploads"

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *database.MongoDB
	redisClient *redis.Client
	queueClient *queue.Client
	avatars     usecase.ObjectStore
	verifier    identity.Verifier
	payments    *paystack.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewMongoDB(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}
	if err := db.EnsureIndexes(ctx, log); err != nil {
		log.Error("Failed to ensure indexes: %v", err)
		_ = db.Close(context.Background())
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = cache.NewRedisClient(cfg)
		if err != nil {
			// Redis only backs the course cache, rate limits and live forum events
			log.Error("Failed to connect to redis: %v (continuing without cache)", err)
			redisClient = nil
		}
	}

	var queueClient *queue.Client
	if cfg.RabbitMQEnabled {
		queueClient, err = queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v (images will be collected inline)", err)
			queueClient = nil
		}
	}

	avatars, err := newAvatarStore(cfg, log)
	if err != nil {
		log.Error("Failed to create avatar storage: %v", err)
		return nil, err
	}

	verifier, err := newVerifier(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize token verification: %v", err)
		return nil, err
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		queueClient: queueClient,
		avatars:     avatars,
		verifier:    verifier,
		payments:    paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey),
	}, nil
}

func newAvatarStore(cfg *config.Config, log *logger.Logger) (usecase.ObjectStore, error) {
	if cfg.S3Enabled() {
		return s3.NewClient(cfg, log)
	}
	log.Info("S3 not configured, storing avatars under %s", cfg.UploadDir)
	return storage.NewLocalStore(cfg.UploadDir, uploadsPath)
}

func newVerifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (identity.Verifier, error) {
	if cfg.AuthProvider == "local" {
		log.Info("Verifying bearer tokens with the local JWT secret")
		return jwt.NewService(cfg.JWTSecret), nil
	}

	verifier, err := firebase.NewVerifier(ctx, cfg, log)
	if err != nil {
		if cfg.SkipAuth {
			log.Warn("Firebase unavailable (%v), SKIP_AUTH is on so requests are not verified", err)
			return nil, nil
		}
		return nil, fmt.Errorf("firebase: %w", err)
	}
	return verifier, nil
}

func (a *App) Run() error {
	// Initialize repositories
	mongoDB := a.db.DB
	courseRepo := persistent.NewCourseRepository(mongoDB)
	imageRepo := persistent.NewImageRepository(mongoDB)
	userRepo := persistent.NewUserRepository(mongoDB)
	forumRepo := persistent.NewForumRepository(mongoDB)
	reviewRepo := persistent.NewReviewRepository(mongoDB)
	cartRepo := persistent.NewCartRepository(mongoDB)
	paymentRepo := persistent.NewPaymentRepository(mongoDB)
	purchaseRepo := persistent.NewPurchaseRepository(mongoDB)
	progressRepo := persistent.NewProgressRepository(mongoDB)
	quizRepo := persistent.NewQuizRepository(mongoDB)

	store := cache.NewStore(a.redisClient)

	// A nil *queue.Client must not reach the interface.
	var gcPublisher usecase.ImageGCPublisher
	if a.queueClient != nil {
		gcPublisher = a.queueClient
	}
	collector := usecase.NewImageCollector(gcPublisher, courseRepo, imageRepo, a.log.Named("image-gc"))

	// Initialize use cases
	courseUseCase := usecase.NewCourseUseCase(courseRepo, collector, store, a.log)
	imageUseCase := usecase.NewImageUseCase(courseRepo, imageRepo, collector, store, a.log)
	userUseCase := usecase.NewUserUseCase(userRepo, emailcheck.NewChecker(nil), a.avatars, a.log)
	forumUseCase := usecase.NewForumUseCase(forumRepo, store, a.log)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, courseRepo, a.log)
	cartUseCase := usecase.NewCartUseCase(cartRepo, courseRepo, purchaseRepo, a.log)
	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, purchaseRepo, cartRepo, courseRepo, a.payments, a.cfg.PaystackCallbackURL, a.log.Named("payments"))
	learningUseCase := usecase.NewLearningUseCase(courseRepo, purchaseRepo, progressRepo, quizRepo, a.log)
	adminUseCase := usecase.NewAdminUseCase(userRepo, courseRepo, forumRepo, paymentRepo, purchaseRepo)

	// Initialize HTTP handlers
	courseHandler := apiHTTP.NewCourseHandler(courseUseCase, imageUseCase, a.log)
	userHandler := apiHTTP.NewUserHandler(userUseCase, a.log)
	forumHandler := apiHTTP.NewForumHandler(forumUseCase, store, a.log)
	reviewHandler := apiHTTP.NewReviewHandler(reviewUseCase, a.log)
	commerceHandler := apiHTTP.NewCommerceHandler(cartUseCase, paymentUseCase, a.log)
	learningHandler := apiHTTP.NewLearningHandler(learningUseCase, a.log)
	adminHandler := apiHTTP.NewAdminHandler(adminUseCase, a.log)
	healthHandler := apiHTTP.NewHealthHandler(a.db, a.cfg.Env, a.log)

	switch {
	case a.cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case a.cfg.IsTest():
		gin.SetMode(gin.TestMode)
	}
	middleware.SetupValidator()

	// Setup router
	r := newEngine(a.log)

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
		AllowCredentials: true,
	}))

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if !a.cfg.S3Enabled() {
		r.Static(uploadsPath, a.cfg.UploadDir)
	}

	// Public routes
	r.POST("/users", userHandler.Register)
	r.GET("/courses", courseHandler.ListCourses)
	r.GET("/courses/:id", courseHandler.GetCourse)
	r.GET("/api/images/:imageId", courseHandler.GetImage)
	r.GET("/reviews", reviewHandler.ListReviews)
	r.GET("/forum-posts", forumHandler.ListPosts)
	r.GET("/forum-posts/:id", forumHandler.GetPost)
	r.GET("/forum-posts/:id/thread", forumHandler.GetThread)
	r.GET("/forum-replies", forumHandler.ListReplies)
	r.GET("/forum/stream", forumHandler.Stream)
	r.POST("/payments/webhook", commerceHandler.Webhook)

	// Protected routes
	protected := r.Group("")
	if a.cfg.SkipAuth {
		a.log.Warn("SKIP_AUTH is enabled, every request runs as %s", middleware.SkipAuthIdentity.Email)
		protected.Use(middleware.SkipAuthMiddleware())
	} else {
		protected.Use(middleware.AuthMiddleware(a.verifier, userUseCase, a.log))
	}
	protected.Use(middleware.RateLimitMiddleware(a.redisClient, a.cfg.RateLimitPerMin, time.Minute, a.log))
	{
		protected.GET("/me", userHandler.Me)
		protected.PUT("/me", userHandler.UpdateMe)
		protected.GET("/me/courses", commerceHandler.MyCourses)
		protected.POST("/api/upload-profile", userHandler.UploadAvatar)

		protected.GET("/cart", commerceHandler.GetCart)
		protected.POST("/cart", commerceHandler.AddToCart)
		protected.DELETE("/cart", commerceHandler.ClearCart)
		protected.DELETE("/cart/:courseId", commerceHandler.RemoveFromCart)
		protected.POST("/payments/initialize", commerceHandler.InitializePayment)
		protected.GET("/payments/verify/:reference", commerceHandler.VerifyPayment)

		protected.POST("/reviews", reviewHandler.SubmitReview)
		protected.DELETE("/reviews/:id", reviewHandler.DeleteReview)

		protected.POST("/forum-posts", forumHandler.CreatePost)
		protected.DELETE("/forum-posts/:id", forumHandler.DeletePost)
		protected.POST("/forum-replies", forumHandler.CreateReply)

		protected.GET("/progress/:courseId", learningHandler.GetProgress)
		protected.POST("/progress/:courseId/lessons/:lessonId", learningHandler.CompleteLesson)
		protected.GET("/courses/:id/quizzes", learningHandler.ListQuizzes)
		protected.POST("/courses/:id/quizzes/:quizId/submit", learningHandler.SubmitQuiz)
	}

	admin := protected.Group("")
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.POST("/courses", courseHandler.CreateCourse)
		admin.PUT("/courses/:id", courseHandler.UpdateCourse)
		admin.DELETE("/courses/:id", courseHandler.DeleteCourse)
		admin.POST("/courses/:id/", courseHandler.UploadCourseImage)
		admin.POST("/courses/:id/image", courseHandler.UploadCourseImage)
		admin.DELETE("/courses/:id/image", courseHandler.DeleteCourseImage)
		admin.POST("/courses/:id/quizzes", learningHandler.CreateQuiz)

		admin.GET("/users", userHandler.ListUsers)
		admin.GET("/users/:email", userHandler.GetUser)
		admin.PUT("/users/:email", userHandler.UpdateUser)
		admin.DELETE("/users/:email", userHandler.DeleteUser)

		admin.GET("/admin/stats", adminHandler.Stats)
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Cognition Berries API starting on port %s (%s)", a.cfg.ServerPort, a.cfg.Env)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

// newEngine returns the base engine. Trailing-slash redirects are off because
// POST /courses/:id/ is the image upload and must not catch POST /courses/:id.
func newEngine(log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(logger.RequestID(), logger.GinMiddleware(log), logger.Recovery(log))
	return r
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down API...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop accepting requests before the backends go away
	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if err := a.db.Close(ctx); err != nil {
		a.log.Error("Error closing database: %v", err)
	}

	a.log.Info("API exited")
	_ = a.log.Sync()
	return shutdownErr
}
