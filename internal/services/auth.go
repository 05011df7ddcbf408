package services

import (
	"os"
	"time"

	"taskhub/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TokenIssuer = "taskhub-backend"

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type AuthService interface {
	LoginUser(db *gorm.DB, username, password string) (*models.User, error)
	GenerateToken(db *gorm.DB, userID uuid.UUID) (TokenPair, error)
	RefreshToken(db *gorm.DB, refreshToken string) (TokenPair, error)
	RevokeToken(db *gorm.DB, refreshToken string) error
}

type AuthServiceImpl struct {
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(accessTokenTTL, refreshTokenTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret_change_in_production"
	}
	return []byte(secret)
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, gorm.ErrInvalidData
	}
	return &user, nil
}

func (s *AuthServiceImpl) GenerateToken(db *gorm.DB, userID uuid.UUID) (TokenPair, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"jti":     jti.String(),
		"iss":     TokenIssuer,
		"iat":     now.Unix(),
		"exp":     now.Add(s.accessTokenTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
	if err != nil {
		return TokenPair{}, err
	}

	refreshUUID, err := uuid.NewV4()
	if err != nil {
		return TokenPair{}, err
	}
	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		RefreshToken: refreshUUID,
		ExpiresAt:    now.Add(s.refreshTokenTTL),
	}
	if err := db.Create(&token).Error; err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshUUID.String(),
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

// RefreshToken rotates the refresh token: the presented one is consumed
// and a fresh pair is issued.
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (TokenPair, error) {
	var token models.Token
	err := db.Where("refresh_token = ? AND expires_at > ?", refreshToken, time.Now()).First(&token).Error
	if err != nil {
		return TokenPair{}, err
	}

	pair, err := s.GenerateToken(db, token.UserID)
	if err != nil {
		return TokenPair{}, err
	}

	db.Delete(&token)
	return pair, nil
}

func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	return db.Where("refresh_token = ?", refreshToken).Delete(&models.Token{}).Error
}
