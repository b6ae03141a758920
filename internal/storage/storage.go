package storage

import (
	"context"

	"github.com/ButyrinIA/social/internal/models"
)

// Storage - хранилище постов. Мутации одного поста сериализуются
// внутри реализации; операции над разными постами не блокируют
// друг друга.
type Storage interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// DeletePost проверяет автора и удаляет пост вместе с лайками и
	// ответами атомарно. ErrForbidden, если requesterID не автор.
	DeletePost(ctx context.Context, id, requesterID string) error
	ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error)
	AddReply(ctx context.Context, postID string, reply *models.Reply) error
	// ListByAuthors возвращает посты указанных авторов, новые первыми
	// (created_at по убыванию, при равенстве id по убыванию).
	ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]*models.Post, error)
	Close() error
}
