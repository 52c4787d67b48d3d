package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cognition-berries/pkg/config"
	"cognition-berries/pkg/database"
	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/queue"
	"cognition-berries/services/janitor/internal/repo/persistent"
	"cognition-berries/services/janitor/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 10 * time.Minute

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *database.MongoDB
	queueClient *queue.Client
	schedule    cron.Schedule
	scheduler   *cron.Cron
	gc          usecase.GCUseCase
	httpServer  *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	// sweeping guards against overlapping manual and scheduled sweeps
	sweeping sync.Mutex
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).Named("janitor")

	schedule, err := cron.ParseStandard(cfg.GCSchedule)
	if err != nil {
		return nil, fmt.Errorf("invalid GC_SCHEDULE %q: %w", cfg.GCSchedule, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewMongoDB(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	var queueClient *queue.Client
	if cfg.RabbitMQEnabled {
		queueClient, err = queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			// The cron sweep still catches everything the queue would have
			log.Error("Failed to connect to RabbitMQ: %v (continuing with the sweep only)", err)
			queueClient = nil
		}
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		queueClient: queueClient,
		schedule:    schedule,
	}, nil
}

func (a *App) Run() error {
	a.ctx, a.cancel = context.WithCancel(context.Background())

	imageRepo := persistent.NewImageRepository(a.db.DB)
	a.gc = usecase.NewGCUseCase(imageRepo, a.cfg.GCGracePeriod, a.cfg.GCBatchSize, a.log)

	if a.queueClient != nil {
		if err := a.queueClient.ConsumeImageGCTasks(a.ctx, a.gc.HandleTask); err != nil {
			return fmt.Errorf("failed to start image GC consumer: %w", err)
		}
	}

	a.scheduler = cron.New(cron.WithLogger(cronLogger{sugar: a.log.Zap().Sugar()}))
	a.scheduler.Schedule(a.schedule, cron.FuncJob(func() {
		if _, err := a.sweep(); err != nil {
			a.log.Error("Scheduled sweep failed: %v", err)
		}
	}))
	a.scheduler.Start()
	a.log.Info("Image GC sweep scheduled (%s, grace period %s)", a.cfg.GCSchedule, a.cfg.GCGracePeriod)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logger.RequestID(), logger.GinMiddleware(a.log), logger.Recovery(a.log))

	r.GET("/health", a.health)
	r.POST("/sweep", a.triggerSweep)

	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.JanitorPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Janitor starting on port %s", a.cfg.JanitorPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) sweep() (*usecase.SweepResult, error) {
	if !a.sweeping.TryLock() {
		return nil, errSweepRunning
	}
	defer a.sweeping.Unlock()

	ctx, cancel := context.WithTimeout(a.ctx, sweepTimeout)
	defer cancel()
	return a.gc.Sweep(ctx)
}

var errSweepRunning = errors.New("a sweep is already running")

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "Database unreachable"})
		return
	}

	status := gin.H{"status": "ok", "queue": a.queueClient != nil}
	if a.queueClient != nil {
		if pending, err := a.queueClient.QueueLength(); err == nil {
			status["pending"] = pending
		}
	}
	c.JSON(http.StatusOK, status)
}

func (a *App) triggerSweep(c *gin.Context) {
	result, err := a.sweep()
	if errors.Is(err, errSweepRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		a.log.Error("Manual sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down janitor...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	if a.scheduler != nil {
		// waits for a running sweep to return
		<-a.scheduler.Stop().Done()
	}
	if a.cancel != nil {
		a.cancel()
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if err := a.db.Close(ctx); err != nil {
		a.log.Error("Error closing database: %v", err)
	}

	a.log.Info("Janitor exited")
	_ = a.log.Sync()
	return shutdownErr
}

// cronLogger routes cron's own messages into zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
