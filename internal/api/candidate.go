package api

import (
	"net/http"                      // HTTP status codes
	"strconv"                       // String conversion
	"voting_system/internal/domain" // Importing domain models
	"voting_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// checkAdminRole reports whether the user identified by userID holds the
// admin role. Fail-closed: any lookup failure (missing row, storage error)
// is treated the same as a non-admin user and comes back false.
func checkAdminRole(db *gorm.DB, userID uint) bool {
	var user domain.User // Fetch user from database
	if err := db.First(&user, userID).Error; err != nil {
		return false // Cannot prove adminship, deny
	}
	return user.Role == "admin" // True only for the admin role
}

// CandidateRequest represents the candidate payload accepted on create
type CandidateRequest struct {
	Name  string `json:"name" binding:"required"`  // Candidate name
	Party string `json:"party" binding:"required"` // Party label
	Age   int    `json:"age"`                      // Optional profile field
	Bio   string `json:"bio"`                      // Optional profile field
}

// CandidateUpdateRequest represents a partial candidate payload; only
// fields present in the body are applied
type CandidateUpdateRequest struct {
	Name  *string `json:"name"`  // New name, if set
	Party *string `json:"party"` // New party, if set
	Age   *int    `json:"age"`   // New age, if set
	Bio   *string `json:"bio"`   // New bio, if set
}

// DeleteCandidateRequest carries the target id in the request body
type DeleteCandidateRequest struct {
	CandidateID uint `json:"candidate_id" binding:"required"` // Candidate to delete
}

// CreateCandidateHandler persists a new candidate (admin only)
func CreateCandidateHandler(db *gorm.DB, rdb *redis.Client, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Only admins may manage candidates
		if !checkAdminRole(db, userID.(uint)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user does not have admin role"})
			return
		}
		var req CandidateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Build the candidate record; vote fields always start at zero
		candidate := domain.Candidate{
			Name:  req.Name,  // Candidate name
			Party: req.Party, // Party label
			Age:   req.Age,   // Optional profile field
			Bio:   req.Bio,   // Optional profile field
		}
		// Attempt to create the candidate in the database
		if err := db.Create(&candidate).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"name":  req.Name,    // Candidate name
				"error": err.Error(), // Error message
			}).Error("Failed to create candidate") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		// An auditable no-op inherited from the original flow: a token is
		// minted from the new record's id and logged, never returned or
		// checked anywhere.
		if token, err := utils.GenerateJWT(candidate.ID, jwtSecret); err == nil {
			logrus.WithFields(logrus.Fields{
				"candidate_id": candidate.ID, // New candidate ID
				"token":        token,        // Minted token
			}).Debug("Candidate token generated")
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"candidate_id": candidate.ID,   // New candidate ID
			"name":         candidate.Name, // Candidate name
			"admin_id":     userID,         // Acting admin
		}).Info("Candidate created")
		invalidateTallyCache(c, rdb) // Tally reads must see the new candidate
		// Return the persisted record including its assigned id
		c.JSON(http.StatusOK, gin.H{"candidate": candidate})
	}
}

// UpdateCandidateHandler applies a partial update to a candidate (admin only)
func UpdateCandidateHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// The role check resolves fully before branching
		if !checkAdminRole(db, userID.(uint)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user does not have admin role"})
			return
		}
		// Parse the candidate id from the path
		candidateID, err := strconv.ParseUint(c.Param("candidateId"), 10, 64)
		if err != nil {
			// A malformed id can never match a record
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		var req CandidateUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var candidate domain.Candidate // Fetch the target candidate
		if err := db.First(&candidate, candidateID).Error; err != nil {
			// If no record matches, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		// Collect only the fields present in the body; vote fields are
		// never updatable through this endpoint
		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name // New name
		}
		if req.Party != nil {
			updates["party"] = *req.Party // New party
		}
		if req.Age != nil {
			updates["age"] = *req.Age // New age
		}
		if req.Bio != nil {
			updates["bio"] = *req.Bio // New bio
		}
		// Apply the update if anything changed
		if len(updates) > 0 {
			if err := db.Model(&candidate).Updates(updates).Error; err != nil {
				logrus.WithFields(logrus.Fields{
					"candidate_id": candidateID, // Target candidate
					"error":        err.Error(), // Error message
				}).Error("Failed to update candidate") // Log failure
				// Return internal server error
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
				return
			}
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"candidate_id": candidate.ID, // Target candidate
			"admin_id":     userID,       // Acting admin
		}).Info("Candidate updated")
		invalidateTallyCache(c, rdb) // Party label may have changed
		// Return the updated record
		c.JSON(http.StatusOK, gin.H{"candidate": candidate})
	}
}

// DeleteCandidateHandler removes a candidate and its votes (admin only).
// The target id travels in the request body, not the path.
func DeleteCandidateHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// The role check resolves fully before branching
		if !checkAdminRole(db, userID.(uint)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user does not have admin role"})
			return
		}
		var req DeleteCandidateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var candidate domain.Candidate // Fetch the target candidate
		if err := db.First(&candidate, req.CandidateID).Error; err != nil {
			// If no record matches, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		// Delete the candidate and its votes together
		err := db.Transaction(func(tx *gorm.DB) error {
			// Remove the candidate's votes first
			if err := tx.Where("candidate_id = ?", candidate.ID).Delete(&domain.Vote{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove the candidate itself
			if err := tx.Delete(&candidate).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"candidate_id": req.CandidateID, // Target candidate
				"error":        err.Error(),     // Error message
			}).Error("Failed to delete candidate") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"candidate_id": candidate.ID, // Deleted candidate
			"admin_id":     userID,       // Acting admin
		}).Info("Candidate deleted")
		invalidateTallyCache(c, rdb) // Tally reads must no longer see it
		// Return the deleted record
		c.JSON(http.StatusOK, gin.H{"candidate": candidate})
	}
}
