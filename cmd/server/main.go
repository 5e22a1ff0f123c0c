package main

import (
	"context"                           // context package is needed for Redis operations
	"log"                               // log package is needed for logging
	"voting_system/internal/api"        // Custom package for API handlers
	"voting_system/internal/config"     // Custom package for configuration
	"voting_system/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user/signup", api.SignupHandler(db, cfg.JWTSecret)) // Registration endpoint
	r.POST("/user/login", api.LoginHandler(db, cfg.JWTSecret))   // Login endpoint

	// Candidate routes
	candidates := r.Group("/candidates")

	// Public tally reads, no auth
	candidates.GET("/vote/count", api.VoteCountHandler(db, redisClient))          // Vote tally endpoint
	candidates.GET("/candidateList", api.CandidateListHandler(db, redisClient))   // Candidate directory endpoint

	// Everything else under /candidates requires a valid token
	protected := candidates.Group("")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	protected.POST("", api.CreateCandidateHandler(db, redisClient, cfg.JWTSecret)) // Create candidate endpoint (admin)
	protected.PUT("/:candidateId", api.UpdateCandidateHandler(db, redisClient))    // Update candidate endpoint (admin)
	protected.DELETE("/delete", api.DeleteCandidateHandler(db, redisClient))       // Delete candidate endpoint (admin)
	protected.POST("/vote/:candidateID", api.CastVoteHandler(db, redisClient))     // Vote casting endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
