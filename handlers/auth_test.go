package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	defer func() { Now = time.Now }()
	fixed := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	Now = func() time.Time { return fixed }

	userID := uuid.NewString()
	token, err := generateToken(userID, "alice", tokenTypeAccess, accessTokenTTL)
	require.NoError(t, err)

	claims, err := parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	defer func() { Now = time.Now }()
	issued := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	Now = func() time.Time { return issued }

	token, err := generateToken(uuid.NewString(), "alice", tokenTypeAccess, accessTokenTTL)
	require.NoError(t, err)

	// past the access TTL the token must stop validating
	Now = func() time.Time { return issued.Add(accessTokenTTL + time.Minute) }
	_, err = parseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	token, err := generateToken(uuid.NewString(), "alice", tokenTypeAccess, accessTokenTTL)
	require.NoError(t, err)

	_, err = parseToken(token + "x")
	assert.Error(t, err)
}

func TestAccessAndRefreshTypesDiffer(t *testing.T) {
	userID := uuid.NewString()

	access, err := generateToken(userID, "alice", tokenTypeAccess, accessTokenTTL)
	require.NoError(t, err)
	refresh, err := generateToken(userID, "alice", tokenTypeRefresh, refreshTokenTTL)
	require.NoError(t, err)

	accessClaims, err := parseToken(access)
	require.NoError(t, err)
	refreshClaims, err := parseToken(refresh)
	require.NoError(t, err)

	assert.Equal(t, tokenTypeAccess, accessClaims.TokenType)
	assert.Equal(t, tokenTypeRefresh, refreshClaims.TokenType)
	assert.NotEqual(t, accessClaims.ID, refreshClaims.ID)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"valid", "Bearer abc123", "abc123", true},
		{"lowercase scheme", "bearer abc123", "abc123", true},
		{"missing", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"scheme only", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bearerToken(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewOpaqueTokenIsUnique(t *testing.T) {
	a := newOpaqueToken()
	b := newOpaqueToken()
	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
}

// Unauthenticated mutation attempts are a permission failure: the
// gate answers 403, never 401.
func TestAuthMiddlewareForbidsUnauthenticatedMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/things/", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	tests := []struct {
		name   string
		header string
	}{
		{"no authorization header", ""},
		{"wrong scheme", "Basic abc123"},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/things/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestAuthMiddlewareForbidsUnknownToken(t *testing.T) {
	mock, _ := newMockDB(t)
	mock.ExpectQuery(`FROM user_tokens`).WillReturnError(sql.ErrNoRows)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/things/", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/things/", nil)
	req.Header.Set("Authorization", "Bearer not-a-known-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
