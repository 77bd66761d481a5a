package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicfix-be/config"
	"civicfix-be/controllers"
	"civicfix-be/models"
	"civicfix-be/routes"
	"civicfix-be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger, err := config.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db := config.ConnectDB()
	if db == nil {
		logger.Fatal("Failed to connect to MongoDB")
	}
	logger.Info("MongoDB connection established")

	if err := config.ConnectRedis(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	logger.Info("Redis connection established")

	if err := models.EnsureVoteIndex(config.GetCollection("votes")); err != nil {
		logger.Fatal("Failed to ensure vote index", zap.Error(err))
	}
	if err := models.EnsureWardIndex(config.GetCollection("wards")); err != nil {
		logger.Fatal("Failed to ensure ward index", zap.Error(err))
	}

	// Ward geofence snapshot; rebuilt again after admin imports.
	geoIndex := services.NewGeoIndex()
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := geoIndex.Reload(loadCtx, config.GetCollection("wards")); err != nil {
		cancelLoad()
		logger.Fatal("Failed to load ward boundaries", zap.Error(err))
	}
	cancelLoad()
	logger.Info("Ward geofence index loaded", zap.Int("wards", geoIndex.WardCount()))

	var vision services.VisionClient
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		vision = services.NewOpenAIVisionClient(
			apiKey,
			os.Getenv("OPENAI_BASE_URL"),
			os.Getenv("OPENAI_VISION_MODEL"),
			config.EnvDuration("VISION_TIMEOUT", services.DefaultVisionTimeout),
		)
		logger.Info("Vision classification enabled")
	} else {
		logger.Warn("OPENAI_API_KEY not set, classification runs on keyword fallback only")
	}

	pipeline := services.NewClassificationPipeline(
		vision,
		config.EnvDuration("VISION_TIMEOUT", services.DefaultVisionTimeout),
		logger,
	)

	controllers.Init(geoIndex, pipeline, logger)

	sweeper := services.NewSweeper(
		services.NewMongoSweepStore(config.GetCollection("complaints")),
		config.RedisClient,
		logger,
	)
	if err := sweeper.Start(config.EnvString("ESCALATION_SWEEP_CRON", services.DefaultSweepSpec)); err != nil {
		logger.Fatal("Failed to start escalation sweep", zap.Error(err))
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.EnvString("FRONTEND_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.AuthRoutes(r)
	routes.ComplaintRoutes(r)
	routes.AdminRoutes(r)
	routes.WardRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:    ":" + config.EnvString("PORT", "8080"),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	logger.Info("Server listening", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
