package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"texnomart-server/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// User registration
func RegisterUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var exists bool
	if err := DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, req.Username).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is already taken"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	userID := uuid.New()
	_, err = DB.Exec(`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`,
		userID, req.Username, string(hash))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       userID,
		"username": req.Username,
		"message":  "Registration successful",
	})
}

// verifyCredentials resolves username+password to a user. Unknown user
// and wrong password are indistinguishable to the caller.
func verifyCredentials(username, password string) (*models.User, bool) {
	var user models.User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	err := DB.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, false
	}
	return &user, true
}

// LoginUser issues a durable opaque token, reusing the existing one
// when the user has logged in before.
func LoginUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login or password"})
		return
	}

	user, ok := verifyCredentials(req.Username, req.Password)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login or password"})
		return
	}

	var token string
	err := DB.QueryRow(`SELECT token FROM user_tokens WHERE user_id = $1`, user.ID).Scan(&token)
	if err == sql.ErrNoRows {
		token = newOpaqueToken()
		_, err = DB.Exec(`INSERT INTO user_tokens (id, user_id, token) VALUES ($1, $2, $3)`,
			uuid.New(), user.ID, token)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// LogoutUser deletes the caller's opaque token.
func LogoutUser(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not authenticated"})
		return
	}

	result, err := DB.Exec(`DELETE FROM user_tokens WHERE token = $1`, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// LoginJWT issues a short-lived access token and a longer-lived
// refresh token.
func LoginJWT(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login or password"})
		return
	}

	user, ok := verifyCredentials(req.Username, req.Password)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login or password"})
		return
	}

	access, err := generateToken(user.ID.String(), user.Username, tokenTypeAccess, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	refresh, err := generateToken(user.ID.String(), user.Username, tokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// RefreshJWT exchanges a valid, non-blacklisted refresh token for a
// fresh access token.
func RefreshJWT(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}

	claims, err := parseToken(req.RefreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
		return
	}

	var revoked bool
	if err := DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = $1)`, claims.ID).Scan(&revoked); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if revoked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
		return
	}

	access, err := generateToken(claims.UserID, claims.Username, tokenTypeAccess, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// LogoutJWT blacklists the presented refresh token by its jti claim.
func LogoutJWT(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}

	claims, err := parseToken(req.RefreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
		return
	}

	_, err = DB.Exec(`INSERT INTO revoked_tokens (id, token_id) VALUES ($1, $2) ON CONFLICT (token_id) DO NOTHING`,
		uuid.New(), claims.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func generateToken(userID, username, tokenType string, ttl time.Duration) (string, error) {
	now := Now()
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithTimeFunc(func() time.Time { return Now() }))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func newOpaqueToken() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// bearerToken extracts the credential from an Authorization header.
func bearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	return header[7:], true
}

// resolveUser maps a bearer credential to a user id. JWT access tokens
// are tried first, then stored opaque tokens.
func resolveUser(token string) (uuid.UUID, bool) {
	if claims, err := parseToken(token); err == nil && claims.TokenType == tokenTypeAccess {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			return id, true
		}
	}

	var userID uuid.UUID
	err := DB.QueryRow(`SELECT user_id FROM user_tokens WHERE token = $1`, token).Scan(&userID)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// AuthMiddleware requires a valid bearer credential (JWT access token
// or stored opaque token) and sets user_id in the request context.
// Mutation attempts without one are a permission failure, not a
// challenge, so the response is 403.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		userID, ok := resolveUser(token)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// OptionalAuthMiddleware sets user_id when a valid credential is
// presented and lets anonymous requests through.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if userID, ok := resolveUser(token); ok {
				c.Set("user_id", userID)
			}
		}
		c.Next()
	}
}

// currentUserID returns the authenticated user id, or nil for
// anonymous requests.
func currentUserID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get("user_id")
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
