package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ButyrinIA/social/internal/models"
)

// MemoryStorage - хранилище в памяти. Внешний RWMutex защищает только
// карту постов; мутации конкретного поста сериализуются его
// собственным мьютексом, поэтому операции над разными постами не
// конкурируют между собой.
type MemoryStorage struct {
	mu    sync.RWMutex
	posts map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	deleted bool
	post    models.Post
	likedBy map[string]struct{}
	replies []models.Reply
}

func New() *MemoryStorage {
	return &MemoryStorage{
		posts: make(map[string]*entry),
	}
}

func (s *MemoryStorage) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[post.ID]; exists {
		return fmt.Errorf("post %s already exists", post.ID)
	}

	e := &entry{
		post:    *post,
		likedBy: make(map[string]struct{}),
	}
	for _, userID := range post.LikedBy {
		e.likedBy[userID] = struct{}{}
	}
	e.replies = append(e.replies, post.Replies...)
	e.post.LikedBy = nil
	e.post.Replies = nil

	s.posts[post.ID] = e
	return nil
}

func (s *MemoryStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, models.ErrNotFound
	}
	return e.snapshot(), nil
}

func (s *MemoryStorage) DeletePost(ctx context.Context, id, requesterID string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return models.ErrNotFound
	}
	if e.post.AuthorID != requesterID {
		e.mu.Unlock()
		return fmt.Errorf("%w: only the author can delete a post", models.ErrForbidden)
	}
	// Пометка под замком записи: конкурирующие операции, уже
	// получившие запись, увидят deleted и ответят ErrNotFound.
	e.deleted = true
	e.likedBy = nil
	e.replies = nil
	e.mu.Unlock()

	s.mu.Lock()
	delete(s.posts, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	e, err := s.lookup(postID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, models.ErrNotFound
	}

	liked := toggleMember(e.likedBy, userID)
	return &models.LikeResult{Liked: liked, LikeCount: len(e.likedBy)}, nil
}

func (s *MemoryStorage) AddReply(ctx context.Context, postID string, reply *models.Reply) error {
	e, err := s.lookup(postID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return models.ErrNotFound
	}

	e.replies = append(e.replies, *reply)
	return nil
}

func (s *MemoryStorage) ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]*models.Post, error) {
	authors := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = struct{}{}
	}

	s.mu.RLock()
	matched := make([]*entry, 0, len(s.posts))
	for _, e := range s.posts {
		if _, ok := authors[e.post.AuthorID]; ok {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	posts := make([]*models.Post, 0, len(matched))
	for _, e := range matched {
		e.mu.Lock()
		if !e.deleted {
			posts = append(posts, e.snapshot())
		}
		e.mu.Unlock()
	}

	// Новые первыми; при равном времени id по убыванию, чтобы порядок
	// был полным и страницы не пересекались.
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})

	if offset < 0 || offset >= len(posts) {
		return []*models.Post{}, nil
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end], nil
}

func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = make(map[string]*entry)
	return nil
}

func (s *MemoryStorage) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.posts[id]
	if !exists {
		return nil, models.ErrNotFound
	}
	return e, nil
}

// snapshot копирует запись в models.Post. Вызывается под e.mu.
func (e *entry) snapshot() *models.Post {
	p := e.post
	p.LikedBy = make([]string, 0, len(e.likedBy))
	for userID := range e.likedBy {
		p.LikedBy = append(p.LikedBy, userID)
	}
	sort.Strings(p.LikedBy)
	p.Replies = make([]models.Reply, len(e.replies))
	copy(p.Replies, e.replies)
	return &p
}

// toggleMember переключает членство userID в множестве и сообщает,
// оказался ли он в итоге добавлен.
func toggleMember(set map[string]struct{}, userID string) bool {
	if _, ok := set[userID]; ok {
		delete(set, userID)
		return false
	}
	set[userID] = struct{}{}
	return true
}
