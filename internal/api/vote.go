package api

import (
	"context"                       // Context for Redis operations
	"errors"                        // Sentinel errors
	"net/http"                      // HTTP status codes
	"strconv"                       // String conversion
	"time"                          // Time durations
	"voting_system/internal/domain" // Importing domain models
	"voting_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Cache keys for the two public tally reads
const (
	voteCountCacheKey     = "tally:votecount"     // Cached /vote/count response
	candidateListCacheKey = "tally:candidatelist" // Cached /candidateList response
)

// errAlreadyVoted aborts the voting transaction when the conditional
// is_voted write matches no row
var errAlreadyVoted = errors.New("user has already voted")

// invalidateTallyCache drops both tally cache entries after any candidate
// or vote mutation
func invalidateTallyCache(c *gin.Context, rdb *redis.Client) {
	if err := utils.DeleteCache(c.Request.Context(), rdb, voteCountCacheKey, candidateListCacheKey); err != nil {
		// Stale tallies are tolerable for one TTL, so log and move on
		logrus.WithField("error", err.Error()).Warn("Failed to invalidate tally cache")
	}
}

// VoteRecord is one row of the public vote count tally
type VoteRecord struct {
	Party string `json:"party"` // Party label
	Count int    `json:"count"` // Vote count for that candidate
}

// CandidateSummary is one row of the public candidate directory
type CandidateSummary struct {
	Name  string `json:"name"`  // Candidate name
	Party string `json:"party"` // Party label
}

// CastVoteHandler records one vote from the authenticated user against the
// path-supplied candidate. Admins may not vote, and each user votes at
// most once for the lifetime of the system.
func CastVoteHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Parse the candidate id from the path
		candidateID, err := strconv.ParseUint(c.Param("candidateID"), 10, 64)
		if err != nil {
			// A malformed id can never match a record
			c.JSON(http.StatusNotFound, gin.H{"message": "Candidate not found"})
			return
		}
		var candidate domain.Candidate // The candidate being voted for
		if err := db.First(&candidate, candidateID).Error; err != nil {
			// Unknown candidate, return not found
			c.JSON(http.StatusNotFound, gin.H{"message": "Candidate not found"})
			return
		}
		var user domain.User // The acting user
		if err := db.First(&user, userID).Error; err != nil {
			// Unknown user, return not found
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		// Admins are excluded from voting
		if user.Role == "admin" {
			c.JSON(http.StatusForbidden, gin.H{"message": "admin is not allowed"})
			return
		}
		// Cheap pre-check; the transaction below is what actually closes
		// the double-vote race
		if user.IsVoted {
			c.JSON(http.StatusBadRequest, gin.H{"message": "You have already voted"})
			return
		}
		// Record the vote: the conditional is_voted flip, the vote row and
		// the counter increment commit or roll back together, so two
		// concurrent requests from one user can never both land and
		// vote_count can never drift from the number of vote rows
		err = db.Transaction(func(tx *gorm.DB) error {
			// Flip is_voted only if it is still false; zero rows affected
			// means another request got here first
			res := tx.Model(&domain.User{}).
				Where("id = ? AND is_voted = ?", user.ID, false).
				Update("is_voted", true)
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			if res.RowsAffected == 0 {
				return errAlreadyVoted // Lost the race, abort
			}
			// Append the vote record
			vote := domain.Vote{
				CandidateID: candidate.ID, // Voted candidate
				UserID:      user.ID,      // Voting user
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err // Return error to rollback
			}
			// Increment the running counter by exactly one
			if err := tx.Model(&candidate).Update("vote_count", gorm.Expr("vote_count + ?", 1)).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if errors.Is(err, errAlreadyVoted) {
			// The pre-check raced with another request from the same user
			c.JSON(http.StatusBadRequest, gin.H{"message": "You have already voted"})
			return
		}
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":      user.ID,      // Voting user
				"candidate_id": candidate.ID, // Voted candidate
				"error":        err.Error(),  // Error message
			}).Error("Vote failed") // Log vote failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		// Log successful vote
		logrus.WithFields(logrus.Fields{
			"user_id":      user.ID,                         // Voting user
			"candidate_id": candidate.ID,                    // Voted candidate
			"timestamp":    time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Vote recorded") // Log vote success
		invalidateTallyCache(c, rdb) // Tally reads must see the new vote
		// Return confirmation only; tallies are a separate read
		c.JSON(http.StatusOK, gin.H{"message": "Vote recorded successfully"})
	}
}

// VoteCountHandler returns every candidate's party label and vote count,
// ordered by vote count descending. Ties land in whatever order the store
// returns them. Public, cached.
func VoteCountHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		var records []VoteRecord    // Tally rows
		// Try to get cached response
		found, err := utils.GetCache(ctx, rdb, voteCountCacheKey, &records)
		if err == nil && found {
			c.JSON(http.StatusOK, records) // Return cached tally
			return
		}
		// Fetch the tally from the database
		if err := db.Model(&domain.Candidate{}).
			Select("party, vote_count as count").
			Order("vote_count desc").
			Scan(&records).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch vote counts") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if records == nil {
			records = []VoteRecord{} // Empty list, never null
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, voteCountCacheKey, records, 60*time.Second)
		c.JSON(http.StatusOK, records) // Return the tally
	}
}

// CandidateListHandler returns the public candidate directory: name and
// party only, no ids and no vote data. Public, cached.
func CandidateListHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()       // Use background context for Redis
		var candidates []CandidateSummary // Directory rows
		// Try to get cached response
		found, err := utils.GetCache(ctx, rdb, candidateListCacheKey, &candidates)
		if err == nil && found {
			c.JSON(http.StatusOK, candidates) // Return cached directory
			return
		}
		// Fetch the directory from the database
		if err := db.Model(&domain.Candidate{}).
			Select("name, party").
			Scan(&candidates).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch candidate list") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if candidates == nil {
			candidates = []CandidateSummary{} // Empty list, never null
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, candidateListCacheKey, candidates, 60*time.Second)
		c.JSON(http.StatusOK, candidates) // Return the directory
	}
}
