package api

import (
	"net/http"
	"testing"
	"voting_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	db, rdb := setupTestEnv(t)
	r := newTestRouter(db, rdb)

	tests := []struct {
		name       string
		body       SignupRequest
		wantStatus int
	}{
		{
			name:       "valid signup",
			body:       SignupRequest{Username: "Ravi", AadhaarNumber: "123456789012", Password: "hunter2hunter"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate aadhaar",
			body:       SignupRequest{Username: "Other", AadhaarNumber: "123456789012", Password: "hunter2hunter"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "aadhaar too short",
			body:       SignupRequest{Username: "Short", AadhaarNumber: "12345", Password: "hunter2hunter"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "aadhaar not numeric",
			body:       SignupRequest{Username: "Alpha", AadhaarNumber: "12345678901x", Password: "hunter2hunter"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "password too short",
			body:       SignupRequest{Username: "Tiny", AadhaarNumber: "223456789012", Password: "short"},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, "POST", "/user/signup", "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, "body: %s", w.Body.String())
			if tt.wantStatus == http.StatusCreated {
				var resp AuthResponse
				mustUnmarshal(t, w, &resp)
				assert.NotEmpty(t, resp.Token)
			}
		})
	}

	// Signups always land as voters, never admins
	var user domain.User
	require.NoError(t, db.Where("aadhaar_number = ?", "123456789012").First(&user).Error)
	assert.Equal(t, "voter", user.Role)
	assert.False(t, user.IsVoted)
	assert.Equal(t, "ravi", user.Username)
}

func TestLogin(t *testing.T) {
	db, rdb := setupTestEnv(t)
	r := newTestRouter(db, rdb)

	signup := SignupRequest{Username: "Ravi", AadhaarNumber: "123456789012", Password: "hunter2hunter"}
	w := doRequest(r, "POST", "/user/signup", "", signup)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("valid credentials", func(t *testing.T) {
		w := doRequest(r, "POST", "/user/login", "", LoginRequest{AadhaarNumber: "123456789012", Password: "hunter2hunter"})
		require.Equal(t, http.StatusOK, w.Code)
		var resp AuthResponse
		mustUnmarshal(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doRequest(r, "POST", "/user/login", "", LoginRequest{AadhaarNumber: "123456789012", Password: "wrongwrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown aadhaar", func(t *testing.T) {
		w := doRequest(r, "POST", "/user/login", "", LoginRequest{AadhaarNumber: "999999999999", Password: "hunter2hunter"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
