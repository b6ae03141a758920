package feed

import (
	"context"
	"fmt"
	"math"

	"github.com/ButyrinIA/social/internal/graph"
	"github.com/ButyrinIA/social/internal/models"
	"github.com/ButyrinIA/social/internal/storage"
)

// Assembler собирает ленту: посты подписок плюс собственные, новые
// первыми. Лента - снимок на момент вызова, строгой согласованности
// между страницами нет.
type Assembler struct {
	storage     storage.Storage
	graph       graph.Graph
	maxPageSize int
}

func New(storage storage.Storage, graph graph.Graph, maxPageSize int) *Assembler {
	return &Assembler{storage: storage, graph: graph, maxPageSize: maxPageSize}
}

func (a *Assembler) GetFeed(ctx context.Context, viewerID string, page, pageSize int) (*models.FeedPage, error) {
	pageSize, err := a.checkPaging(page, pageSize)
	if err != nil {
		return nil, err
	}

	following, err := a.graph.Following(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve following: %w", err)
	}

	// Пользователь всегда видит собственные посты.
	authors := make([]string, 0, len(following)+1)
	authors = append(authors, viewerID)
	for _, id := range following {
		if id != viewerID {
			authors = append(authors, id)
		}
	}

	offset, ok := pageOffset(page, pageSize)
	if !ok {
		return &models.FeedPage{Posts: []*models.Post{}, Page: page, PageSize: pageSize}, nil
	}

	posts, err := a.storage.ListByAuthors(ctx, authors, offset, pageSize)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{Posts: posts, Page: page, PageSize: pageSize}, nil
}

// UserPosts - посты одного автора для страницы профиля, та же
// пагинация, что и в ленте.
func (a *Assembler) UserPosts(ctx context.Context, authorID string, page, pageSize int) (*models.FeedPage, error) {
	pageSize, err := a.checkPaging(page, pageSize)
	if err != nil {
		return nil, err
	}

	offset, ok := pageOffset(page, pageSize)
	if !ok {
		return &models.FeedPage{Posts: []*models.Post{}, Page: page, PageSize: pageSize}, nil
	}

	posts, err := a.storage.ListByAuthors(ctx, []string{authorID}, offset, pageSize)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{Posts: posts, Page: page, PageSize: pageSize}, nil
}

// pageOffset вычисляет смещение страницы. Если смещение не
// представимо в int, страница заведомо за пределами набора и
// заполняется пустой.
func pageOffset(page, pageSize int) (int, bool) {
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}

func (a *Assembler) checkPaging(page, pageSize int) (int, error) {
	if page < 1 {
		return 0, fmt.Errorf("%w: page must be >= 1", models.ErrValidation)
	}
	if pageSize < 1 {
		return 0, fmt.Errorf("%w: pageSize must be >= 1", models.ErrValidation)
	}
	if a.maxPageSize > 0 && pageSize > a.maxPageSize {
		pageSize = a.maxPageSize
	}
	return pageSize, nil
}
