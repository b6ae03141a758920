package engagement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ButyrinIA/social/internal/models"
	"github.com/ButyrinIA/social/internal/storage"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const maxReplyLength = 500

var likeTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "social_like_toggles_total",
	Help: "Number of like toggles, by resulting state",
}, []string{"state"})

var repliesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "social_replies_total",
	Help: "Number of replies appended to posts",
})

// Engine применяет лайки и ответы к постам. Атомарность на уровне
// поста обеспечивает хранилище; здесь живут валидация и сборка
// сущностей.
type Engine struct {
	storage storage.Storage
}

func New(storage storage.Storage) *Engine {
	return &Engine{storage: storage}
}

// ToggleLike переключает членство пользователя в множестве лайкнувших.
// Повторный вызов возвращает состояние к исходному, поэтому ретраи
// клиента безопасны.
func (e *Engine) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	result, err := e.storage.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if result.Liked {
		likeTogglesTotal.WithLabelValues("liked").Inc()
	} else {
		likeTogglesTotal.WithLabelValues("unliked").Inc()
	}
	return result, nil
}

// Reply добавляет ответ к существующему посту. Отвечать может любой
// аутентифицированный пользователь.
func (e *Engine) Reply(ctx context.Context, postID, userID, text string) (*models.Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: reply text is required", models.ErrValidation)
	}
	if len(text) > maxReplyLength {
		return nil, fmt.Errorf("%w: reply text exceeds %d characters", models.ErrValidation, maxReplyLength)
	}

	reply := &models.Reply{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.storage.AddReply(ctx, postID, reply); err != nil {
		return nil, err
	}

	repliesTotal.Inc()
	return reply, nil
}
