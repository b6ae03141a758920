package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ButyrinIA/social/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	maxPostLength   = 500
	defaultPageSize = 20
)

type createRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

type replyRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleToken выдает токен для ручной проверки; в бою личность
// подтверждает внешний провайдер с тем же секретом.
func (s *Server) handleToken(c echo.Context) error {
	userID := c.QueryParam("user")
	if userID == "" {
		return errorJSON(c, fmt.Errorf("%w: user query parameter is required", models.ErrValidation))
	}

	token, err := s.generateToken(userID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleCreatePost(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, fmt.Errorf("%w: invalid request body", models.ErrValidation))
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Image) == "" {
		return errorJSON(c, fmt.Errorf("%w: text or image is required", models.ErrValidation))
	}
	if len(req.Text) > maxPostLength {
		return errorJSON(c, fmt.Errorf("%w: text exceeds %d characters", models.ErrValidation, maxPostLength))
	}

	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  requestUserID(c),
		Text:      req.Text,
		Image:     req.Image,
		CreatedAt: time.Now().UTC(),
		LikedBy:   []string{},
		Replies:   []models.Reply{},
	}
	if err := s.storage.CreatePost(c.Request().Context(), post); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (s *Server) handleGetPost(c echo.Context) error {
	post, err := s.storage.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) handleDeletePost(c echo.Context) error {
	err := s.storage.DeletePost(c.Request().Context(), c.Param("id"), requestUserID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleToggleLike(c echo.Context) error {
	result, err := s.engine.ToggleLike(c.Request().Context(), c.Param("id"), requestUserID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleReply(c echo.Context) error {
	var req replyRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, fmt.Errorf("%w: invalid request body", models.ErrValidation))
	}

	reply, err := s.engine.Reply(c.Request().Context(), c.Param("id"), requestUserID(c), req.Text)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, reply)
}

func (s *Server) handleFeed(c echo.Context) error {
	page, pageSize, err := pagingParams(c)
	if err != nil {
		return errorJSON(c, err)
	}

	feedPage, err := s.feed.GetFeed(c.Request().Context(), requestUserID(c), page, pageSize)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, feedPage)
}

func (s *Server) handleUserPosts(c echo.Context) error {
	page, pageSize, err := pagingParams(c)
	if err != nil {
		return errorJSON(c, err)
	}

	feedPage, err := s.feed.UserPosts(c.Request().Context(), c.Param("id"), page, pageSize)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, feedPage)
}

func pagingParams(c echo.Context) (int, int, error) {
	page, err := intQueryParam(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := intQueryParam(c, "pageSize", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func intQueryParam(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", models.ErrValidation, name)
	}
	return value, nil
}

// errorJSON сопоставляет ошибки ядра со статусами HTTP. Неизвестные
// ошибки не раскрываются клиенту.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
