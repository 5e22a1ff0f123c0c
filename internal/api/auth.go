package api

import (
	"net/http"                      // HTTP status codes
	"regexp"                        // Regular expressions
	"strings"                       // String manipulation
	"voting_system/internal/domain" // Importing domain models
	"voting_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// SignupRequest represents a new voter registration
type SignupRequest struct {
	Username      string `json:"username" binding:"required"`       // Username must be provided
	AadhaarNumber string `json:"aadhaar_number" binding:"required"` // National ID must be provided
	Password      string `json:"password" binding:"required"`       // Password must be provided
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	AadhaarNumber string `json:"aadhaar_number" binding:"required"` // National ID must be provided
	Password      string `json:"password" binding:"required"`       // Password must be provided
}

// AuthResponse carries the issued JWT
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// isValidAadhaar checks that the national ID is exactly 12 digits
func isValidAadhaar(aadhaar string) bool {
	matched, _ := regexp.MatchString(`^[0-9]{12}$`, aadhaar) // Regex for a 12 digit number
	return matched                                           // Return whether it matched
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// SignupHandler registers a new voter and returns a JWT. Every signup gets
// the voter role; admins are provisioned out of band.
func SignupHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate national ID format
		if !isValidAadhaar(req.AadhaarNumber) {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Aadhaar number must be exactly 12 digits"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		// Create user with lowercase username to ensure uniqueness
		user := domain.User{
			Username:      strings.ToLower(req.Username), // Normalized username
			AadhaarNumber: req.AadhaarNumber,             // National ID
			Password:      string(hash),                  // Hashed password
			Role:          "voter",                       // Signups are always voters
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// Duplicate username or national ID
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		// Log successful signup
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New user ID
			"username": user.Username, // Username
		}).Info("User registered")
		// Return the token in the response
		c.JSON(http.StatusCreated, AuthResponse{Token: token})
	}
}

// LoginHandler authenticates a user by national ID and password and
// returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("aadhaar_number = ?", req.AadhaarNumber).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
