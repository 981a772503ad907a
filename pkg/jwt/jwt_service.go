package jwt

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"farmxchain/domain"
	"farmxchain/internal/utils"

	"github.com/golang-jwt/jwt/v4"
)

const tokenLifetime = 120 * time.Minute

type (
	JWTService interface {
		GenerateTokenUser(user domain.User, upstreamToken string) string
		ValidateTokenUser(token string) (*jwt.Token, error)
		GetUserIDByToken(token string) (string, string, error)
		GetClaims(token string) (*UserClaims, error)
	}

	// UserClaims carries the dashboard identity plus the account backend's
	// own token, which is forwarded on admin calls.
	UserClaims struct {
		UserID   string `json:"user_id"`
		Role     string `json:"role"`
		Email    string `json:"email"`
		Upstream string `json:"upstream,omitempty"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
	}
)

func getSecretKey() string {
	utils.LoadConfig()
	secretKey := utils.GetConfig("JWT_SECRET")
	return secretKey
}

func NewJWTService() JWTService {
	return NewJWTServiceWithSecret(getSecretKey())
}

func NewJWTServiceWithSecret(secret string) JWTService {
	return &jwtService{
		secretKey: secret,
		issuer:    "FARMXCHAIN",
	}
}

func (j *jwtService) GenerateTokenUser(user domain.User, upstreamToken string) string {
	claims := UserClaims{
		strconv.FormatInt(user.ID, 10),
		domain.NormalizeRole(user.Role),
		user.Email,
		upstreamToken,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tx, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		log.Println(err)
	}
	return tx
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateTokenUser(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &UserClaims{}, j.parseToken)
}

func (j *jwtService) GetClaims(token string) (*UserClaims, error) {
	t_Token, err := j.ValidateTokenUser(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return t_Token.Claims.(*UserClaims), nil
}

func (j *jwtService) GetUserIDByToken(token string) (string, string, error) {
	claims, err := j.GetClaims(token)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Role, nil
}
