package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"datalog/internal/datalog"
	apperrors "datalog/internal/errors"
)

const (
	operatorKey   = "operator"
	tokenIssuer   = "datalog-api"
	operatorToken = "operator"
)

// OperatorClaims represents the claims in an operator token. The subject is
// the operator name stamped on recorded actions.
type OperatorClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateOperatorToken signs a token identifying operator, valid for ttl.
func GenerateOperatorToken(secret, operator string, ttl time.Duration) (string, error) {
	if operator == "" {
		return "", fmt.Errorf("operator name is required")
	}
	now := time.Now()
	claims := &OperatorClaims{
		TokenType: operatorToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseOperatorToken validates tokenString and returns the operator it names.
func ParseOperatorToken(secret, tokenString string) (string, error) {
	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid operator token")
	}
	if claims.TokenType != operatorToken || claims.Subject == "" {
		return "", fmt.Errorf("token does not name an operator")
	}
	return claims.Subject, nil
}

// Operator resolves who is making the request from an optional bearer token
// and attaches the name to the request context for the action log. Requests
// without an Authorization header proceed anonymously; a malformed or invalid
// token is rejected.
func Operator(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		operator, err := ParseOperatorToken(secret, parts[1])
		if err != nil {
			abortWithError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(operatorKey, operator)
		c.Request = c.Request.WithContext(datalog.WithOperator(c.Request.Context(), operator))
		c.Next()
	}
}
