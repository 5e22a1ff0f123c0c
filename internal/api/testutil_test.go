package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"voting_system/internal/domain"
	"voting_system/internal/middleware"
	"voting_system/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

// setupTestEnv returns a migrated in-memory database and an in-process
// redis, both torn down with the test.
func setupTestEnv(t *testing.T) (*gorm.DB, *redis.Client) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Candidate{}, &domain.Vote{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory store visible to
	// every goroutine and serializes concurrent writers
	sqlDB.SetMaxOpenConns(1)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return db, rdb
}

// newTestRouter wires the same routes as cmd/server
func newTestRouter(db *gorm.DB, rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/user/signup", SignupHandler(db, testJWTSecret))
	r.POST("/user/login", LoginHandler(db, testJWTSecret))

	candidates := r.Group("/candidates")
	candidates.GET("/vote/count", VoteCountHandler(db, rdb))
	candidates.GET("/candidateList", CandidateListHandler(db, rdb))

	protected := candidates.Group("")
	protected.Use(middleware.JWTAuthMiddleware(testJWTSecret))
	protected.POST("", CreateCandidateHandler(db, rdb, testJWTSecret))
	protected.PUT("/:candidateId", UpdateCandidateHandler(db, rdb))
	protected.DELETE("/delete", DeleteCandidateHandler(db, rdb))
	protected.POST("/vote/:candidateID", CastVoteHandler(db, rdb))
	return r
}

var aadhaarSeq atomic.Uint64

// createTestUser inserts a user with the given role and returns it
func createTestUser(t *testing.T, db *gorm.DB, username, role string) domain.User {
	t.Helper()
	user := domain.User{
		Username:      username,
		AadhaarNumber: fmt.Sprintf("%012d", aadhaarSeq.Add(1)),
		Password:      "not-a-real-hash",
		Role:          role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createTestCandidate inserts a candidate and returns it
func createTestCandidate(t *testing.T, db *gorm.DB, name, party string) domain.Candidate {
	t.Helper()
	candidate := domain.Candidate{Name: name, Party: party}
	require.NoError(t, db.Create(&candidate).Error)
	return candidate
}

// bearerToken mints a token for the given user id
func bearerToken(t *testing.T, userID uint) string {
	t.Helper()
	token, err := utils.GenerateJWT(userID, testJWTSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

// doRequest performs one request against the router and returns the recorder
func doRequest(r *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// mustUnmarshal decodes a recorder body into dest
func mustUnmarshal(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), "body: %s", w.Body.String())
}
