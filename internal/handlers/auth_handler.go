package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/farrasdika/eventa/internal/helpers"
	"github.com/farrasdika/eventa/internal/models"
)

const (
	accessTokenTTL     = 15 * time.Minute
	refreshTokenTTL    = 30 * 24 * time.Hour
	refreshTokenCookie = "refreshToken"
)

type AuthHandler struct {
	db            *gorm.DB
	secret        string
	secureCookies bool
}

func NewAuthHandler(db *gorm.DB, secret string, secureCookies bool) *AuthHandler {
	return &AuthHandler{db: db, secret: secret, secureCookies: secureCookies}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=USER ORGANIZER"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	var existingUser models.User
	if result := h.db.Where("email = ?", req.Email).First(&existingUser); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, "Email already in use.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := h.db.Create(&user).Error; err != nil {
		// Two registrations can pass the exists check at once; the
		// unique index settles it.
		if helpers.IsUniqueViolation(err) {
			helpers.RespondWithError(c, http.StatusConflict, "Email already in use.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	h.issueTokens(c, &user, http.StatusCreated)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	h.issueTokens(c, &user, http.StatusOK)
}

// Refresh exchanges a valid refresh-token cookie for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	tokenString, err := c.Cookie(refreshTokenCookie)
	if err != nil || tokenString == "" {
		helpers.RespondWithError(c, http.StatusUnauthorized, "No refresh token.")
		return
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.secret), nil
	})
	if err != nil || !token.Valid {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid refresh token.")
		return
	}

	var stored models.RefreshToken
	if err := h.db.Where("token = ? AND revoked = false", tokenString).First(&stored).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid refresh token.")
		return
	}
	if stored.ExpiresAt.Before(time.Now()) {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Refresh token expired.")
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", stored.UserID).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not found.")
		return
	}

	accessToken, err := h.signAccessToken(&user)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"user":        user,
	})
}

// Logout revokes the refresh token and clears its cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString, err := c.Cookie(refreshTokenCookie)
	if err == nil && tokenString != "" {
		h.db.Model(&models.RefreshToken{}).
			Where("token = ?", tokenString).
			Update("revoked", true)
		h.setRefreshCookie(c, "", -1)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User, status int) {
	accessToken, err := h.signAccessToken(user)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}

	expiresAt := time.Now().Add(refreshTokenTTL)
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": uuid.New().String(),
		"exp": expiresAt.Unix(),
	})
	refreshString, err := refreshToken.SignedString([]byte(h.secret))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}

	stored := models.RefreshToken{
		Token:     refreshString,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := h.db.Create(&stored).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to persist refresh token.")
		return
	}

	h.setRefreshCookie(c, refreshString, int(refreshTokenTTL.Seconds()))
	c.JSON(status, gin.H{
		"accessToken": accessToken,
		"user":        user,
	})
}

// setRefreshCookie writes the HttpOnly refresh cookie; Secure is on
// for production deployments.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetCookie(refreshTokenCookie, value, maxAge, "/", "", h.secureCookies, true)
}

func (h *AuthHandler) signAccessToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString([]byte(h.secret))
}
