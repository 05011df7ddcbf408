package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"taskhub/backend/internal/services"
	"taskhub/backend/internal/tokens"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type LogoutHandler struct {
	db          *gorm.DB
	authService services.AuthService
	denylist    *tokens.Denylist
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func NewLogoutHandler(db *gorm.DB, authService services.AuthService, denylist *tokens.Denylist) *LogoutHandler {
	return &LogoutHandler{db: db, authService: authService, denylist: denylist}
}

// Logout consumes the refresh token and denylists the presented access
// token for its remaining lifetime. It reports success regardless of
// whether the tokens were still live, so a repeated logout is harmless.
func (h *LogoutHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	_ = h.authService.RevokeToken(h.db, req.RefreshToken)
	h.revokeAccessToken(c)

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *LogoutHandler) revokeAccessToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret_change_in_production"
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	jti, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)
	if jti == "" || exp == 0 {
		return
	}
	ttl := time.Until(time.Unix(int64(exp), 0))
	_ = h.denylist.Revoke(c.Request.Context(), jti, ttl)
}
