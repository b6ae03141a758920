package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/ButyrinIA/social/internal/models"
	"github.com/ButyrinIA/social/internal/storage/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func createPost(t *testing.T, store *memory.MemoryStorage, authorID string) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Text:      "Пост",
		CreatedAt: time.Now().UTC(),
		LikedBy:   []string{},
		Replies:   []models.Reply{},
	}
	assert.NoError(t, store.CreatePost(context.Background(), post))
	return post
}

func TestEngine(t *testing.T) {
	t.Run("ToggleLike Pair Restores State", func(t *testing.T) {
		store := memory.New()
		engine := New(store)
		ctx := context.Background()

		post := createPost(t, store, "alice")

		result, err := engine.ToggleLike(ctx, post.ID, "bob")
		assert.NoError(t, err, "Ошибка при переключении лайка")
		assert.True(t, result.Liked)
		assert.Equal(t, 1, result.LikeCount)

		result, err = engine.ToggleLike(ctx, post.ID, "bob")
		assert.NoError(t, err)
		assert.False(t, result.Liked)
		assert.Equal(t, 0, result.LikeCount, "Пара переключений должна вернуть исходное состояние")
	})

	t.Run("ToggleLike Not Found", func(t *testing.T) {
		engine := New(memory.New())

		_, err := engine.ToggleLike(context.Background(), "non-existent-id", "bob")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Reply", func(t *testing.T) {
		store := memory.New()
		engine := New(store)
		ctx := context.Background()

		post := createPost(t, store, "alice")

		reply, err := engine.Reply(ctx, post.ID, "carol", "Привет")
		assert.NoError(t, err, "Ошибка при добавлении ответа")
		assert.NotEmpty(t, reply.ID)
		assert.Equal(t, "carol", reply.UserID)
		assert.Equal(t, "Привет", reply.Text)
		assert.False(t, reply.CreatedAt.IsZero())

		retrieved, err := store.GetPost(ctx, post.ID)
		assert.NoError(t, err)
		assert.Len(t, retrieved.Replies, 1, "Ответ должен быть добавлен к посту")
		assert.Equal(t, reply.ID, retrieved.Replies[0].ID)
	})

	t.Run("Reply Validation", func(t *testing.T) {
		store := memory.New()
		engine := New(store)
		ctx := context.Background()

		post := createPost(t, store, "alice")

		_, err := engine.Reply(ctx, post.ID, "carol", "")
		assert.ErrorIs(t, err, models.ErrValidation, "Пустой текст должен отклоняться")

		_, err = engine.Reply(ctx, post.ID, "carol", "   ")
		assert.ErrorIs(t, err, models.ErrValidation, "Пробельный текст должен отклоняться")

		retrieved, err := store.GetPost(ctx, post.ID)
		assert.NoError(t, err)
		assert.Empty(t, retrieved.Replies, "Неудачный ответ не должен оставлять следов")
	})

	t.Run("Reply Not Found", func(t *testing.T) {
		engine := New(memory.New())

		_, err := engine.Reply(context.Background(), "non-existent-id", "carol", "Привет")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
