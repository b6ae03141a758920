package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/ButyrinIA/social/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Проверка личности - обязанность внешнего провайдера; здесь только
// валидируется подписанный им токен. Идентификатор пользователя
// никогда не берется из тела запроса.

func (s *Server) generateToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(s.cfg.Auth.JWTSecret))
}

func (s *Server) validateJWT(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: empty token", models.ErrUnauthenticated)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", models.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", models.ErrUnauthenticated)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", fmt.Errorf("%w: token has no user_id", models.ErrUnauthenticated)
	}
	return userID, nil
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		const prefix = "Bearer "
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) {
			return errorJSON(c, fmt.Errorf("%w: missing bearer token", models.ErrUnauthenticated))
		}

		userID, err := s.validateJWT(strings.TrimPrefix(header, prefix))
		if err != nil {
			return errorJSON(c, err)
		}

		c.Set("userID", userID)
		return next(c)
	}
}

func requestUserID(c echo.Context) string {
	userID, _ := c.Get("userID").(string)
	return userID
}
