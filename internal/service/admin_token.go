package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenSecretMissing 未配置 JWT 密钥
	ErrTokenSecretMissing = errors.New("JWT 密钥未配置")
	// ErrTokenInvalid token 无效
	ErrTokenInvalid = errors.New("无效的 token")
)

// JWTClaims 后台 JWT 声明（由上游看板签发）
type JWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateAdminJWT 生成后台 JWT Token（种子数据与测试使用）
func GenerateAdminJWT(secret, issuer string, adminID uint, username string, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, ErrTokenSecretMissing
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := JWTClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseAdminJWT 解析并校验后台 JWT Token，issuer 为空时不校验签发方
func ParseAdminJWT(secret, issuer, tokenString string) (*JWTClaims, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrTokenSecretMissing
	}
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(options...)
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if !token.Valid || claims.AdminID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
